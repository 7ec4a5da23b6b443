package usage

import "math"

// Pricing is USD per one million tokens.
type Pricing struct {
	Input  float64
	Output float64
}

const defaultModel = "gpt-4o-mini"

// pricingTable mirrors the published per-1M-token rates for the models this
// system calls. Unknown models fall back to the default row.
var pricingTable = map[string]Pricing{
	"gpt-4o-mini": {Input: 0.15, Output: 0.60},
	"gpt-4o":      {Input: 2.50, Output: 10.00},
	"gpt-4":       {Input: 30.00, Output: 60.00},
}

// PricingFor returns the pricing row for a model, falling back to the
// default row for unknown models.
func PricingFor(model string) Pricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	return pricingTable[defaultModel]
}

// Cost computes the USD cost of one call, rounded to 6 decimal places.
func Cost(model string, promptTokens, completionTokens int) float64 {
	p := PricingFor(model)
	cost := float64(promptTokens)/1e6*p.Input + float64(completionTokens)/1e6*p.Output
	return math.Round(cost*1e6) / 1e6
}
