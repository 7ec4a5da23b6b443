package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gakkiten/inventory-tracker/internal/acquire"
	"github.com/gakkiten/inventory-tracker/internal/llm"
	"github.com/gakkiten/inventory-tracker/internal/pattern"
	"github.com/gakkiten/inventory-tracker/internal/record"
)

// debug payloads carry at most this much of the raw model response
const maxDebugText = 1000

// Acquirer turns raw file bytes into text.
type Acquirer interface {
	Extract(ctx context.Context, data []byte, format string) (acquire.Result, error)
}

// Orchestrator wires acquisition, the two extraction strategies, and the
// shared validation pass. One instance serves all requests; it holds no
// per-request state.
type Orchestrator struct {
	acquirer Acquirer
	ai       llm.Extractor
	pattern  *pattern.Extractor
	log      *slog.Logger
}

func NewOrchestrator(acq Acquirer, ai llm.Extractor, pat *pattern.Extractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{acquirer: acq, ai: ai, pattern: pat, log: logger}
}

// ExtractFile runs the full pipeline for a single file.
func (o *Orchestrator) ExtractFile(ctx context.Context, in Input, strategy Strategy) (Result, error) {
	acqRes, err := o.acquirer.Extract(ctx, in.Data, in.Format)
	if err != nil {
		o.log.Warn("extract.acquire_failed",
			"file", in.Name, "format", in.Format, "error", err)
		return failure(err, map[string]any{"file": in.Name}), err
	}

	res, err := o.ExtractText(ctx, acqRes.Text, strategy)
	if res.Method != "" {
		res.Method = fmt.Sprintf("%s + %s", acqRes.Method, res.Method)
	}
	return res, err
}

// ExtractText dispatches already-acquired text to the chosen strategy and
// applies the shared validation and dedup pass.
func (o *Orchestrator) ExtractText(ctx context.Context, text string, strategy Strategy) (Result, error) {
	switch strategy {
	case StrategyAI:
		return o.extractAI(ctx, text)
	default:
		return o.extractPattern(text)
	}
}

// ExtractBatch processes inputs one at a time, collects per-item failures,
// and merges the surviving records. Partial success is a success: records
// from healthy items are returned alongside the failure list.
func (o *Orchestrator) ExtractBatch(ctx context.Context, inputs []Input, strategy Strategy) (Result, error) {
	var (
		merged   []record.ProductRecord
		failures []map[string]any
		firstErr error
	)
	for _, in := range inputs {
		res, err := o.ExtractFile(ctx, in, strategy)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			failures = append(failures, map[string]any{
				"file":  in.Name,
				"error": userMessage(err),
			})
			continue
		}
		merged = append(merged, res.Products...)
	}

	merged = record.Dedup(merged)

	var debug map[string]any
	if len(failures) > 0 {
		debug = map[string]any{"failures": failures}
	}
	if len(merged) == 0 {
		err := firstErr
		if err == nil {
			err = record.ErrNoValidRecords
		}
		res := failure(err, debug)
		return res, err
	}
	return Result{
		Success:  true,
		Products: merged,
		Method:   methodFor(strategy),
		Debug:    debug,
	}, nil
}

func (o *Orchestrator) extractAI(ctx context.Context, text string) (Result, error) {
	if o.ai == nil {
		err := llm.ErrMissingCredential
		return failure(err, nil), err
	}
	records, diags, err := o.ai.Extract(ctx, text)
	if err != nil {
		return failure(err, aiDebug(diags)), err
	}
	valid, vdbg, err := record.PostProcess(records, o.log)
	if err != nil {
		debug := aiDebug(diags)
		if debug == nil {
			debug = map[string]any{}
		}
		debug["pre_filter_count"] = vdbg.PreFilterCount
		debug["rejected_sample"] = vdbg.RejectedSample
		return failure(err, debug), err
	}
	return Result{Success: true, Products: valid, Method: methodFor(StrategyAI)}, nil
}

func (o *Orchestrator) extractPattern(text string) (Result, error) {
	records := o.pattern.Extract(text)
	valid, _, err := record.PostProcess(records, o.log)
	if err != nil {
		return failure(err, nil), err
	}
	return Result{Success: true, Products: valid, Method: methodFor(StrategyPattern)}, nil
}

func methodFor(s Strategy) string {
	if s == StrategyAI {
		return "AI処理 (OpenAI)"
	}
	return "従来処理 (パターン抽出)"
}

func failure(err error, debug map[string]any) Result {
	return Result{Success: false, Error: userMessage(err), Debug: debug}
}

func aiDebug(d llm.Diagnostics) map[string]any {
	m := map[string]any{}
	if d.RawResponse != "" {
		m["ai_response"] = truncate(d.RawResponse, maxDebugText)
	}
	if d.CleanedJSON != "" {
		m["cleaned_json"] = truncate(d.CleanedJSON, maxDebugText)
	}
	if d.PreFilterCount > 0 {
		m["extracted_product_count"] = d.PreFilterCount
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// userMessage maps the error taxonomy to the operator-facing text shown in
// the extraction UI.
func userMessage(err error) string {
	switch {
	case errors.Is(err, acquire.ErrUnreadable):
		return "ファイルの読み込みに失敗しました。ファイルが破損している可能性があります。"
	case errors.Is(err, acquire.ErrInsufficientText):
		return "PDFから十分なテキストを抽出できませんでした。画像ベースのPDFの可能性があります。"
	case errors.Is(err, acquire.ErrNoText):
		return "画像からテキストを認識できませんでした。より鮮明な画像をお試しください。"
	case errors.Is(err, llm.ErrMissingCredential):
		return "OpenAI APIキーが設定されていません。パターン抽出をご利用ください。"
	case errors.Is(err, llm.ErrMalformedJSON):
		return "AI応答の解析に失敗しました。"
	case errors.Is(err, llm.ErrNoValidRecords), errors.Is(err, record.ErrNoValidRecords):
		return "商品情報を抽出できませんでした。ファイルの形式を確認してください。"
	case errors.Is(err, llm.ErrServiceError):
		return "AI処理中にエラーが発生しました。時間をおいて再度お試しください。"
	default:
		return fmt.Sprintf("処理エラー: %v", err)
	}
}

// UserMessage is exposed for transport-layer error rendering.
func UserMessage(err error) string { return userMessage(err) }
