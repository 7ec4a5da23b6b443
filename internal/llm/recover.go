package llm

import (
	"regexp"
)

// The completion service returns free text that may or may not be clean
// JSON. Recovery tries these patterns in order until one matches; within a
// pattern the longest match wins — a truncated fragment is shorter than the
// array it was cut from.
var recoveryPatterns = []struct {
	re    *regexp.Regexp
	group int // submatch index holding the array; 0 = whole match
}{
	// bracketed array of objects
	{regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`), 0},
	// array inside a ```json code fence
	{regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```"), 1},
	// array inside a generic code fence
	{regexp.MustCompile("(?s)```\\s*(\\[.*?\\])\\s*```"), 1},
	// any bracketed array, last resort
	{regexp.MustCompile(`(?s)\[.*?\]`), 0},
}

var reBareObject = regexp.MustCompile(`(?s)\{.*?\}`)

// RecoverJSONArray pulls a JSON array out of a free-form response. A single
// bare object is wrapped into a one-element array. Returns false when
// nothing array-shaped is present.
func RecoverJSONArray(content string) (string, bool) {
	for _, p := range recoveryPatterns {
		var candidates []string
		if p.group == 0 {
			candidates = p.re.FindAllString(content, -1)
		} else {
			for _, m := range p.re.FindAllStringSubmatch(content, -1) {
				candidates = append(candidates, m[p.group])
			}
		}
		if len(candidates) == 0 {
			continue
		}
		longest := candidates[0]
		for _, c := range candidates[1:] {
			if len(c) > len(longest) {
				longest = c
			}
		}
		return longest, true
	}

	if obj := reBareObject.FindString(content); obj != "" {
		return "[" + obj + "]", true
	}
	return "", false
}
