// Package pattern implements the heuristic, dictionary-driven product
// extractor. It never fails: unparseable input simply produces no records.
package pattern

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/gakkiten/inventory-tracker/constants"
	"github.com/gakkiten/inventory-tracker/internal/lexicon"
	"github.com/gakkiten/inventory-tracker/internal/record"
)

// Price notations tried in order; the first hit on a line wins.
var priceRegexps = []*regexp.Regexp{
	regexp.MustCompile(`[¥￥][\d,]+`), // symbol-prefixed
	regexp.MustCompile(`[\d,]+円`),    // yen-suffixed
	regexp.MustCompile(`[\d,]+[¥￥]`), // symbol-suffixed
}

var modelTokenRe = regexp.MustCompile(`[A-Za-z0-9-]{3,}`)

var priceStripper = strings.NewReplacer("¥", "", "￥", "", "円", "", ",", "")

// Extractor scans free text line by line against the lexicon tables.
type Extractor struct {
	lex *lexicon.Lexicon
	log *slog.Logger
}

func NewExtractor(lex *lexicon.Lexicon, logger *slog.Logger) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{lex: lex, log: logger}
}

// Extract returns one candidate record per line that names a known brand and
// carries a price. The result is already deduplicated but not yet validated.
func (e *Extractor) Extract(text string) []record.ProductRecord {
	var out []record.ProductRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r, ok := e.scanLine(line); ok {
			out = append(out, r)
		}
	}
	deduped := record.Dedup(out)
	e.log.Debug("pattern.extract.done",
		"lines_matched", len(out), "records", len(deduped))
	return deduped
}

func (e *Extractor) scanLine(line string) (record.ProductRecord, bool) {
	lower := strings.ToLower(line)

	brand := ""
	for _, b := range e.lex.Brands {
		if strings.Contains(lower, strings.ToLower(b)) {
			brand = b
			break
		}
	}
	if brand == "" {
		return record.ProductRecord{}, false
	}

	price := extractPrice(line)

	category := string(constants.Other)
	for _, cat := range e.lex.CategoryOrder {
		if containsAny(lower, e.lex.Categories[cat]) {
			category = cat
			break
		}
	}

	model := extractModel(line, brand)

	color := e.lex.DefaultColor
	for _, c := range e.lex.Colors {
		if strings.Contains(lower, strings.ToLower(c)) {
			color = c
			break
		}
	}

	condition := string(constants.ConditionUsed)
	for _, cond := range e.lex.ConditionOrder {
		if containsAny(lower, e.lex.Conditions[cond]) {
			condition = cond
			break
		}
	}

	name := brand
	if model != "" {
		name += " " + model
	}
	if category != string(constants.Other) {
		name += " " + category
	}

	if name == "" || price == "" {
		return record.ProductRecord{}, false
	}
	return record.ProductRecord{
		Category:     category,
		ProductName:  name,
		Manufacturer: brand,
		ModelNumber:  model,
		Color:        color,
		Condition:    condition,
		Price:        price,
		Notes:        "自動抽出: " + truncateLine(line, 100),
	}, true
}

func extractPrice(line string) string {
	for _, re := range priceRegexps {
		if m := re.FindString(line); m != "" {
			return priceStripper.Replace(m)
		}
	}
	return ""
}

// extractModel picks the longest alphanumeric token on the line that is not
// the brand itself. Longest wins so "FG830-II" beats a stray "DX7" fragment.
func extractModel(line, brand string) string {
	best := ""
	for _, tok := range modelTokenRe.FindAllString(line, -1) {
		if strings.EqualFold(tok, brand) {
			continue
		}
		if len(tok) > len(best) {
			best = tok
		}
	}
	return best
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func truncateLine(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
