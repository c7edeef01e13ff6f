package llmprovider

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// RuntimeClient mirrors the subset of the AWS Bedrock runtime client used by
// the adapter, matching *bedrockruntime.Client so callers can pass either the
// real client or a fake in tests.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockOptions configures the Bedrock adapter.
type BedrockOptions struct {
	Runtime      RuntimeClient
	DefaultModel string
	MaxTokens    int
}

// BedrockClient implements Client on top of the AWS Bedrock Converse API.
type BedrockClient struct {
	runtime      RuntimeClient
	defaultModel string
	maxTokens    int
}

// NewBedrock builds an adapter from an already-constructed Bedrock runtime
// client.
func NewBedrock(opts BedrockOptions) (*BedrockClient, error) {
	if opts.Runtime == nil {
		return nil, errors.New("llmprovider: bedrock runtime client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("llmprovider: bedrock default model is required")
	}
	return &BedrockClient{runtime: opts.Runtime, defaultModel: opts.DefaultModel, maxTokens: opts.MaxTokens}, nil
}

func (c *BedrockClient) Name() string { return "bedrock" }

func (c *BedrockClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: &model,
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: req.Prompt},
				},
			},
		},
	}
	if req.SystemPrompt != "" {
		input.System = []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.SystemPrompt},
		}
	}
	inferenceConfig := &brtypes.InferenceConfiguration{}
	if maxTokens > 0 {
		mt := int32(maxTokens)
		inferenceConfig.MaxTokens = &mt
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		inferenceConfig.Temperature = &temp
	}
	input.InferenceConfig = inferenceConfig

	output, err := c.runtime.Converse(ctx, input)
	if err != nil {
		return Response{}, Failure(c.Name(), "converse", err)
	}

	var content string
	if msg, ok := output.Output.(*brtypes.ConverseOutputMemberMessage); ok {
		for _, block := range msg.Value.Content {
			if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
				content += text.Value
			}
		}
	}

	var inputTokens, outputTokens int
	if output.Usage != nil {
		if output.Usage.InputTokens != nil {
			inputTokens = int(*output.Usage.InputTokens)
		}
		if output.Usage.OutputTokens != nil {
			outputTokens = int(*output.Usage.OutputTokens)
		}
	}

	return Response{
		Content:      content,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}

func (c *BedrockClient) CountTokens(text string) int {
	return len(text) / 4
}

func (c *BedrockClient) CalculateCost(inputTokens, outputTokens int, model string) float64 {
	return priceFor(bedrockPricing, bedrockFallbackPricing, model, inputTokens, outputTokens)
}
