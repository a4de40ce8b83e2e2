package llm

// ModelCost holds list prices for a model in USD. Token prices are per
// one million tokens. PerImage is charged for each successful picture by
// models that bill per image instead of per output token.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
	PerImage      float64
}

// Cost calculates the USD cost of the given token counts and pictures.
func (c ModelCost) Cost(inputTokens, outputTokens, images int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000 +
		float64(images)*c.PerImage
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models the friendly names in this package
// resolve to, plus the defaults reachable through OpenRouter.
// Last updated: 2026-02-15.
var modelCosts = map[string]ModelCost{
	// Gemini: the default text and image models. Gemini images are billed
	// as output tokens (about 1290 per picture).
	"gemini-3-flash-preview": {InputPerMTok: 0.5, OutputPerMTok: 3},
	"gemini-3-pro-preview":   {InputPerMTok: 2, OutputPerMTok: 12},
	"gemini-2.5-flash":       {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"gemini-2.5-flash-image": {InputPerMTok: 0.3, OutputPerMTok: 30},

	// OpenAI
	"gpt-4o":       {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-mini":  {InputPerMTok: 0.15, OutputPerMTok: 0.6},
	"gpt-4.1":      {InputPerMTok: 2, OutputPerMTok: 8},
	"gpt-4.1-mini": {InputPerMTok: 0.4, OutputPerMTok: 1.6},
	"gpt-image-1":  {PerImage: 0.042},
	"dall-e-3":     {PerImage: 0.04},

	// Anthropic
	"claude-haiku-4-5-20251001":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-sonnet-4-5-20250929": {InputPerMTok: 3, OutputPerMTok: 15},

	// OpenRouter
	"google/gemini-2.5-flash":       {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"google/gemini-3-flash-preview": {InputPerMTok: 0.5, OutputPerMTok: 3},
	"openai/gpt-4o-mini":            {InputPerMTok: 0.15, OutputPerMTok: 0.6},
}
