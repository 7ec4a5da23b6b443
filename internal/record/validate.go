package record

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoValidRecords means the post-processing stage filtered every candidate.
var ErrNoValidRecords = errors.New("no valid product records")

// ValidationDebug is attached to terminal validation failures so the caller
// can see what was rejected and why.
type ValidationDebug struct {
	PreFilterCount int             `json:"extracted_product_count"`
	RejectedSample []ProductRecord `json:"rejected_sample,omitempty"`
}

const rejectedSampleMax = 5

var reDigits = regexp.MustCompile(`^\d+$`)

// CoerceNumeric normalizes a numeric-looking string field: currency symbols,
// thousands separators and surrounding whitespace are stripped. Values that
// still do not parse as a non-negative number come back empty — absent, not
// zero.
func CoerceNumeric(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("¥", "", "￥", "", "円", "", ",", "", " ", "", "　", "").Replace(s)
	if reDigits.MatchString(s) {
		return s
	}
	// tolerate decimals like "45000.0" by truncating
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return strconv.Itoa(int(f))
	}
	return ""
}

// normalize coerces the money-ish fields of a single record in place.
func normalize(r ProductRecord) ProductRecord {
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.ModelNumber = strings.TrimSpace(r.ModelNumber)
	r.Price = CoerceNumeric(r.Price)
	r.ListPrice = CoerceNumeric(r.ListPrice)
	r.WholesalePrice = CoerceNumeric(r.WholesalePrice)
	r.GrossMargin = CoerceNumeric(r.GrossMargin)
	return r
}

// Dedup removes duplicates by (product_name, manufacturer, price), keeping
// the first occurrence. Idempotent: applying it to an already-deduplicated
// list changes nothing.
func Dedup(records []ProductRecord) []ProductRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]ProductRecord, 0, len(records))
	for _, r := range records {
		key := r.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// PostProcess is the shared post-stage applied after either extraction
// strategy: coerce numeric fields, drop invalid records, dedup. An empty
// result is a terminal ErrNoValidRecords with a debug payload.
func PostProcess(records []ProductRecord, logger *slog.Logger) ([]ProductRecord, *ValidationDebug, error) {
	if logger == nil {
		logger = slog.Default()
	}

	valid := make([]ProductRecord, 0, len(records))
	var rejected []ProductRecord
	for _, r := range records {
		n := normalize(r)
		if n.Valid() {
			valid = append(valid, n)
		} else {
			rejected = append(rejected, r)
		}
	}
	valid = Dedup(valid)

	if len(valid) == 0 {
		sample := rejected
		if len(sample) > rejectedSampleMax {
			sample = sample[:rejectedSampleMax]
		}
		logger.Warn("record.postprocess.empty",
			"pre_filter_count", len(records),
			"rejected", len(rejected),
		)
		return nil, &ValidationDebug{
			PreFilterCount: len(records),
			RejectedSample: sample,
		}, ErrNoValidRecords
	}

	if len(rejected) > 0 {
		logger.Info("record.postprocess.filtered",
			"kept", len(valid),
			"rejected", len(rejected),
		)
	}
	return valid, nil, nil
}
