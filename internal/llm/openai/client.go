package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gakkiten/inventory-tracker/internal/llm"
	"github.com/gakkiten/inventory-tracker/internal/record"
)

const (
	meterEndpoint = "/api/v1/extract"
	meterAction   = "product_info_extraction"
)

// Extract implements llm.Extractor over text-only chat/completions.
// Exactly one blocking call, no retry; a usage entry is emitted for every
// completed call, even when the response later turns out to be unusable.
func (c *Client) Extract(ctx context.Context, text string) ([]record.ProductRecord, llm.Diagnostics, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, llm.Diagnostics{}, llm.ErrMissingCredential
	}

	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": llm.BuildUserPrompt(text)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, llm.Diagnostics{}, fmt.Errorf("%w: %v", llm.ErrServiceError, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, llm.Diagnostics{}, fmt.Errorf("%w: decode response: %v", llm.ErrServiceError, err)
	}

	// Meter the call before looking at the content: a garbage answer still
	// cost tokens.
	if c.meter != nil {
		c.meter.Record(c.cfg.Model, cc.Usage.PromptTokens, cc.Usage.CompletionTokens, meterEndpoint, meterAction)
	}

	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		c.log.Error("llm.extract.empty_content",
			"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, llm.Diagnostics{RawResponse: string(raw)}, fmt.Errorf("%w: empty completion content", llm.ErrServiceError)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	diags := llm.Diagnostics{RawResponse: content}

	jsonStr, ok := llm.RecoverJSONArray(content)
	if !ok {
		c.log.Error("llm.extract.no_json",
			"req_id", rid, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, diags, fmt.Errorf("%w: no json array in response", llm.ErrMalformedJSON)
	}

	cleaned := llm.CleanJSON(jsonStr)
	diags.CleanedJSON = cleaned

	items, err := llm.DecodeRecordArray(cleaned)
	if err != nil {
		c.log.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, diags, fmt.Errorf("%w: %v", llm.ErrMalformedJSON, err)
	}
	diags.PreFilterCount = len(items)

	schema := llm.BuildProductJSONSchema()
	records := make([]record.ProductRecord, 0, len(items))
	for i, item := range items {
		b, merr := json.Marshal(item)
		if merr != nil {
			continue
		}
		if verr := llm.ValidateJSONAgainstSchema(schema, b); verr != nil {
			// lenient pass: scrub the offending optionals and retry
			cleanedItem, touched := llm.SanitizeRecordObject(item, c.log)
			b, merr = json.Marshal(cleanedItem)
			if merr != nil {
				continue
			}
			if verr2 := llm.ValidateJSONAgainstSchema(schema, b); verr2 != nil {
				c.log.Warn("llm.extract.record_rejected",
					"req_id", rid, "index", i, "error", verr2, "sanitized", touched)
				continue
			}
		}
		var r record.ProductRecord
		if uerr := json.Unmarshal(b, &r); uerr != nil {
			continue
		}
		if r.HasIdentifier() {
			records = append(records, r)
		}
	}

	if len(records) == 0 {
		c.log.Error("llm.extract.no_valid_records",
			"req_id", rid, "pre_filter", len(items),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, diags, llm.ErrNoValidRecords
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"records", len(records),
		"pre_filter", len(items),
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, diags, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, raw)
	}
	return raw, nil
}
