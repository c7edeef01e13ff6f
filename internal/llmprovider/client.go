// Package llmprovider implements the polymorphic LLM provider adapter: a
// small capability interface implemented by OpenAI, Anthropic, Bedrock, and
// Mock variants, each able to generate completions, estimate token counts,
// and price a completed call.
package llmprovider

import "context"

// Request is a provider-agnostic completion request. Providers translate it
// into their own wire format.
type Request struct {
	// SystemPrompt, if set, is sent as the system/instructions message.
	SystemPrompt string

	// Prompt is the user message text.
	Prompt string

	// Model selects the provider's model id. Empty means "use the
	// provider's configured default".
	Model string

	// MaxTokens bounds the generated completion length.
	MaxTokens int

	// Temperature controls sampling randomness. Zero means "use the
	// provider's default".
	Temperature float64
}

// Response is a provider-agnostic completion result.
type Response struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Client is the capability interface every provider adapter implements.
type Client interface {
	// Name returns the provider identifier ("openai", "anthropic",
	// "bedrock", "mock").
	Name() string

	// Generate performs one completion call.
	Generate(ctx context.Context, req Request) (Response, error)

	// CountTokens estimates the token count of text for this provider's
	// tokenizer. Estimates, not exact counts, are acceptable.
	CountTokens(text string) int

	// CalculateCost prices a completed call in USD given its input/output
	// token counts and the model actually used.
	CalculateCost(inputTokens, outputTokens int, model string) float64
}
