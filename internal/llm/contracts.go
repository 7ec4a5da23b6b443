package llm

import (
	"context"
	"errors"

	"github.com/gakkiten/inventory-tracker/internal/record"
)

// Typed failures of the AI extraction path. The orchestrator switches on
// these — never on error message content.
var (
	// ErrMissingCredential means no completion-service API key is
	// configured; the AI strategy is unavailable.
	ErrMissingCredential = errors.New("completion service credential not configured")
	// ErrServiceError covers transport failures, non-2xx statuses and
	// empty responses from the completion service.
	ErrServiceError = errors.New("completion service error")
	// ErrMalformedJSON means no parseable JSON array could be recovered
	// from the response.
	ErrMalformedJSON = errors.New("malformed json in completion response")
	// ErrNoValidRecords means the response parsed but every record failed
	// the validity invariant.
	ErrNoValidRecords = errors.New("no valid product records in completion response")
)

// Diagnostics carries debugging context for failed or suspicious calls.
// RawResponse is truncated by the orchestrator before it reaches a client.
type Diagnostics struct {
	RawResponse    string `json:"ai_response,omitempty"`
	CleanedJSON    string `json:"cleaned_json,omitempty"`
	PreFilterCount int    `json:"extracted_product_count,omitempty"`
}

// Extractor is the AI extraction contract: source text in, validated-shape
// records out. Implementations must never fabricate field values — the
// prompt communicates that contract to the service itself.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]record.ProductRecord, Diagnostics, error)
}
