package llm

// ModelCost is the list price of one model in USD. Text is billed per
// million tokens; image models also carry a flat price per generated image.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
	PerImage      float64
}

// Cost returns the token cost for the given counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// Estimate returns the cost of calls requests that used the given tokens.
// Image models are billed per call, ignoring output tokens.
func (c ModelCost) Estimate(calls, inputTokens, outputTokens int) float64 {
	if c.PerImage > 0 {
		return float64(calls)*c.PerImage + float64(inputTokens)*c.InputPerMTok/1_000_000
	}
	return c.Cost(inputTokens, outputTokens)
}

// LookupCost returns the pricing for a model ID or friendly name, or nil
// when the model is not in the table.
func LookupCost(model string) *ModelCost {
	for _, aliases := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		if id, ok := aliases[model]; ok {
			model = id
			break
		}
	}
	if c, ok := modelCosts[model]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models the providers default to or accept by
// friendly name, plus their common dated IDs. Prices as of 2026-02.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":           {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-haiku-4-5-20251001":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-sonnet-4-5":          {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-sonnet-4-5-20250929": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-opus-4-5":            {InputPerMTok: 5, OutputPerMTok: 25},
	"claude-opus-4-5-20251101":   {InputPerMTok: 5, OutputPerMTok: 25},

	"gpt-4o":       {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-mini":  {InputPerMTok: 0.15, OutputPerMTok: 0.6},
	"gpt-4.1":      {InputPerMTok: 2, OutputPerMTok: 8},
	"gpt-4.1-mini": {InputPerMTok: 0.4, OutputPerMTok: 1.6},
	"gpt-4.1-nano": {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gpt-5":        {InputPerMTok: 1.25, OutputPerMTok: 10},
	"gpt-5-mini":   {InputPerMTok: 0.25, OutputPerMTok: 2},
	"gpt-5-nano":   {InputPerMTok: 0.05, OutputPerMTok: 0.4},

	"gemini-2.0-flash":       {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.5-flash":       {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"gemini-2.5-flash-lite":  {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.5-pro":         {InputPerMTok: 1.25, OutputPerMTok: 10},
	"gemini-3-flash-preview": {InputPerMTok: 0.5, OutputPerMTok: 3},
	"gemini-3-pro-preview":   {InputPerMTok: 2, OutputPerMTok: 12},
	"gemini-flash-latest":    {InputPerMTok: 0.3, OutputPerMTok: 2.5},

	"gemini-2.5-flash-image":     {InputPerMTok: 0.3, PerImage: 0.039},
	"gemini-3-pro-image-preview": {InputPerMTok: 2, PerImage: 0.134},
}
