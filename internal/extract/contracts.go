// Package extract orchestrates the document-to-record pipeline: text
// acquisition, strategy dispatch, and shared post-processing.
package extract

import (
	"context"

	"github.com/gakkiten/inventory-tracker/internal/record"
)

// Strategy selects the extraction algorithm. It is caller-chosen, never
// auto-detected; an unusable AI path surfaces as an error instead of a
// silent downgrade to heuristics.
type Strategy string

const (
	StrategyAI      Strategy = "ai"
	StrategyPattern Strategy = "pattern"
)

// ParseStrategy maps a request parameter to a Strategy. Empty input
// defaults to the pattern strategy since it has no external dependency.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyAI:
		return StrategyAI, true
	case StrategyPattern, "":
		return StrategyPattern, s != ""
	default:
		return StrategyPattern, false
	}
}

// Result is the per-request envelope handed back to the transport layer.
// It is transient: built once, serialized, discarded.
type Result struct {
	Success  bool                   `json:"success"`
	Products []record.ProductRecord `json:"products,omitempty"`
	Method   string                 `json:"method,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Debug    map[string]any         `json:"debug,omitempty"`
}

// Input is one file to extract from.
type Input struct {
	Name   string // original filename, for diagnostics only
	Data   []byte
	Format string // constants.PDF or constants.IMAGE
}

// TextExtractor is the interface both strategies are consumed through by
// text-level callers (e.g. the one-shot CLI).
type TextExtractor interface {
	ExtractText(ctx context.Context, text string, strategy Strategy) (Result, error)
}
