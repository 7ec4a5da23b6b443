package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gakkiten/inventory-tracker/constants"
)

// Acquisition failures. All terminal for the current request.
var (
	// ErrUnreadable means the underlying reader rejected the file
	// (corrupt or encrypted).
	ErrUnreadable = errors.New("file unreadable")
	// ErrInsufficientText means a PDF yielded too little text to extract
	// from — most likely an image-only scan.
	ErrInsufficientText = errors.New("insufficient text in pdf")
	// ErrNoText means OCR produced (almost) nothing.
	ErrNoText = errors.New("no text recognized in image")
)

const (
	// MinPDFTextLen is the threshold below which a PDF is treated as
	// image-only.
	MinPDFTextLen = 10
	// MinImageTextLen is the threshold below which an OCR pass is treated
	// as having found nothing.
	MinImageTextLen = 3
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "jpn+eng"
	TessdataDir   string
}

// Result is the normalized outcome of one acquisition pass.
type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Extractor converts a raw file (PDF or image bytes) into plain text.
// No network calls; cost is CPU/time only.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner allows substituting the OCR process runner.
func NewExtractorWithRunner(cfg Config, r Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "jpn+eng"
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}

// Extract picks a strategy based on the declared format.
func (e *Extractor) Extract(ctx context.Context, data []byte, format string) (Result, error) {
	start := time.Now()
	e.logger.Debug("acquire.start", "format", format, "bytes", len(data))

	switch format {
	case constants.PDF:
		res, err := e.extractPDF(ctx, data)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, data)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("acquire.unsupported_format", "format", format)
		return Result{}, fmt.Errorf("unsupported format: %q", format)
	}
}
