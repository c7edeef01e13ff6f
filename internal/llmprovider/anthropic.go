package llmprovider

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter, so tests can substitute a fake.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicOptions configures the Anthropic adapter.
type AnthropicOptions struct {
	// DefaultModel is used when a request does not specify Model.
	DefaultModel string

	// MaxTokens is the default completion cap when a request does not set
	// MaxTokens.
	MaxTokens int
}

// AnthropicClient implements Client on top of the Anthropic Messages API.
type AnthropicClient struct {
	msg          MessagesClient
	defaultModel string
	maxTokens    int
}

// NewAnthropic builds an adapter from an already-constructed Messages
// client, so callers (and tests) can substitute a fake MessagesClient.
func NewAnthropic(msg MessagesClient, opts AnthropicOptions) (*AnthropicClient, error) {
	if msg == nil {
		return nil, errors.New("llmprovider: anthropic messages client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("llmprovider: anthropic default model is required")
	}
	return &AnthropicClient{msg: msg, defaultModel: opts.DefaultModel, maxTokens: opts.MaxTokens}, nil
}

// NewAnthropicFromAPIKey constructs an adapter using the default Anthropic
// HTTP client configured with apiKey.
func NewAnthropicFromAPIKey(apiKey string, opts AnthropicOptions) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("llmprovider: anthropic api key is required")
	}
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropic(&client.Messages, opts)
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return Response{}, Failure(c.Name(), "messages.new", err)
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			content += block.Text
		}
	}

	return Response{
		Content:      content,
		Model:        model,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (c *AnthropicClient) CountTokens(text string) int {
	return len(text) / 4
}

func (c *AnthropicClient) CalculateCost(inputTokens, outputTokens int, model string) float64 {
	return priceFor(anthropicPricing, anthropicFallbackPricing, model, inputTokens, outputTokens)
}
