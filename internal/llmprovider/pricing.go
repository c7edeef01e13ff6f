package llmprovider

// modelPricing holds USD cost per 1,000,000 tokens, split between input and
// output, mirroring how each provider bills.
type modelPricing struct {
	inputPer1M  float64
	outputPer1M float64
}

func cost(p modelPricing, inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*p.inputPer1M + float64(outputTokens)/1_000_000*p.outputPer1M
}

// openAIPricing carries the known OpenAI model price table. Unlisted models
// fall back to openAIFallbackPricing.
var openAIPricing = map[string]modelPricing{
	"gpt-4o":              {inputPer1M: 2.50, outputPer1M: 10.00},
	"gpt-4o-mini":         {inputPer1M: 0.15, outputPer1M: 0.60},
	"gpt-4-turbo-preview": {inputPer1M: 10.00, outputPer1M: 30.00},
	"gpt-4":               {inputPer1M: 30.00, outputPer1M: 60.00},
	"gpt-3.5-turbo":       {inputPer1M: 0.50, outputPer1M: 1.50},
}

var openAIFallbackPricing = modelPricing{inputPer1M: 0.50, outputPer1M: 1.50}

// anthropicPricing carries the known Anthropic model price table. Unlisted
// models fall back to anthropicFallbackPricing.
var anthropicPricing = map[string]modelPricing{
	"claude-3-opus-20240229":   {inputPer1M: 15.00, outputPer1M: 75.00},
	"claude-3-sonnet-20240229": {inputPer1M: 3.00, outputPer1M: 15.00},
	"claude-3-haiku-20240307":  {inputPer1M: 0.25, outputPer1M: 1.25},
	"claude-3-5-sonnet-20241022": {inputPer1M: 3.00, outputPer1M: 15.00},
}

var anthropicFallbackPricing = modelPricing{inputPer1M: 0.25, outputPer1M: 1.25}

// bedrockPricing carries the known Bedrock model price table, keyed by the
// Bedrock model id (which includes the vendor prefix and version suffix).
// Unlisted models fall back to bedrockFallbackPricing.
var bedrockPricing = map[string]modelPricing{
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {inputPer1M: 3.00, outputPer1M: 15.00},
	"anthropic.claude-3-opus-20240229-v1:0":     {inputPer1M: 15.00, outputPer1M: 75.00},
	"anthropic.claude-3-haiku-20240307-v1:0":    {inputPer1M: 0.25, outputPer1M: 1.25},
	"amazon.titan-text-express-v1":              {inputPer1M: 0.20, outputPer1M: 0.60},
}

var bedrockFallbackPricing = modelPricing{inputPer1M: 0.25, outputPer1M: 1.25}

func priceFor(table map[string]modelPricing, fallback modelPricing, model string, inputTokens, outputTokens int) float64 {
	p, ok := table[model]
	if !ok {
		p = fallback
	}
	return cost(p, inputTokens, outputTokens)
}
