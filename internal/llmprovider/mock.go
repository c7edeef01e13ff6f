package llmprovider

import "context"

// MockClient never calls out to a real model. It exists so pipelines can be
// authored and exercised without provider credentials, and is also the
// fallback target of the "auto" resolution order when no provider has
// credentials configured.
type MockClient struct{}

// NewMock constructs a MockClient.
func NewMock() *MockClient { return &MockClient{} }

func (c *MockClient) Name() string { return "mock" }

func (c *MockClient) Generate(_ context.Context, req Request) (Response, error) {
	preview := req.SystemPrompt + "\n" + req.Prompt
	if len(preview) > 1000 {
		preview = preview[:1000]
	}
	content := "MOCK LLM RESPONSE (no real model was called).\n\nPrompt preview:\n" + preview

	model := req.Model
	if model == "" {
		model = "mock-llm"
	}
	return Response{
		Content:      content,
		Model:        model,
		InputTokens:  c.CountTokens(req.SystemPrompt + req.Prompt),
		OutputTokens: c.CountTokens(content),
	}, nil
}

// CountTokens always reports zero: the mock never calls a real tokenizer,
// matching the original implementation's hardcoded zero-token accounting.
func (c *MockClient) CountTokens(_ string) int {
	return 0
}

func (c *MockClient) CalculateCost(_, _ int, _ string) float64 {
	return 0
}
