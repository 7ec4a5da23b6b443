package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gakkiten/inventory-tracker/internal/usage"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // near-deterministic by default
	MaxTokens   int           // bounded output budget
	Timeout     time.Duration // http client timeout
}

// UsageRecorder receives one accounting entry per completion call.
type UsageRecorder interface {
	Record(model string, promptTokens, completionTokens int, endpoint, userAction string) usage.LogEntry
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	meter      UsageRecorder
	log        *slog.Logger
}

func NewClient(cfg Config, meter UsageRecorder, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		meter:      meter,
		log:        logger,
	}
}

// Available reports whether the AI strategy can run at all.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}
