package llmprovider

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient captures the subset of the go-openai client used by the
// adapter, so tests can substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIOptions configures the OpenAI adapter.
type OpenAIOptions struct {
	Client       ChatClient
	DefaultModel string
	MaxTokens    int
}

// OpenAIClient implements Client via the OpenAI Chat Completions API.
type OpenAIClient struct {
	chat      ChatClient
	model     string
	maxTokens int
}

// NewOpenAI builds an adapter from an already-constructed chat client.
func NewOpenAI(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.Client == nil {
		return nil, errors.New("llmprovider: openai client is required")
	}
	model := strings.TrimSpace(opts.DefaultModel)
	if model == "" {
		return nil, errors.New("llmprovider: openai default model is required")
	}
	return &OpenAIClient{chat: opts.Client, model: model, maxTokens: opts.MaxTokens}, nil
}

// NewOpenAIFromAPIKey constructs an adapter using the default go-openai HTTP
// client configured with apiKey.
func NewOpenAIFromAPIKey(apiKey string, opts OpenAIOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llmprovider: openai api key is required")
	}
	opts.Client = openai.NewClient(apiKey)
	return NewOpenAI(opts)
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	request := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   maxTokens,
	}
	response, err := c.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return Response{}, Failure(c.Name(), "chat.completions.create", err)
	}

	var content string
	if len(response.Choices) > 0 {
		content = response.Choices[0].Message.Content
	}

	return Response{
		Content:      content,
		Model:        model,
		InputTokens:  response.Usage.PromptTokens,
		OutputTokens: response.Usage.CompletionTokens,
	}, nil
}

func (c *OpenAIClient) CountTokens(text string) int {
	// Approximate token count: the tiktoken cl100k_base encoding averages
	// roughly 4 characters per token for English text, matching the ratio
	// used elsewhere in this package for non-tokenizer-backed estimates.
	return len(text) / 4
}

func (c *OpenAIClient) CalculateCost(inputTokens, outputTokens int, model string) float64 {
	return priceFor(openAIPricing, openAIFallbackPricing, model, inputTokens, outputTokens)
}
