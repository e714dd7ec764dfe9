// Package pricing estimates LLM spend from token counts. Rates are
// configuration, not logic: callers pass the tiers they care about and
// the analytics report one estimate per tier.
package pricing

// Tier is a named pricing tier in USD per 1K tokens.
type Tier struct {
	Name        string
	InputPer1K  float64
	OutputPer1K float64
}

// DefaultTiers are the two estimates reported when the caller supplies
// none.
var DefaultTiers = []Tier{
	{Name: "gpt-4", InputPer1K: 0.03, OutputPer1K: 0.06},
	{Name: "gpt-3.5-turbo", InputPer1K: 0.0015, OutputPer1K: 0.002},
}

// Estimate returns the cost in USD for the given token counts under
// this tier.
func (t Tier) Estimate(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)/1000*t.InputPer1K + float64(completionTokens)/1000*t.OutputPer1K
}

// EstimateTokens gives a rough token count for text, using the common
// one-token-per-four-characters approximation. Real counts come from
// the caller's tokenizer; this exists for previews only.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}
