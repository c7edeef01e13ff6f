// Package llmservice resolves a requested provider name to a configured
// llmprovider.Client, following an init-if-credentialed-else-warn policy:
// providers without credentials are skipped at startup rather than failing
// the whole service, and an "auto" request walks a fixed preference order
// to find the first one that was actually constructed.
package llmservice

import (
	"context"

	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
	"github.com/bhavana9635/aic-orchestrator/internal/telemetry"
)

// autoOrder is the preference order tried when a caller requests the
// "auto" provider.
var autoOrder = []string{"openai", "anthropic", "bedrock", "mock"}

// knownProviders is the fixed set of provider identifiers this service
// understands. A name in this set absent from clients is a configured-but-
// unavailable provider (ProviderUnavailable); a name outside this set is
// simply unrecognized (ProviderUnknown).
var knownProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"bedrock":   true,
	"mock":      true,
}

// Service is a registry of configured provider clients, keyed by provider
// name, plus the always-available mock fallback.
type Service struct {
	clients map[string]llmprovider.Client
	logger  telemetry.Logger
}

// New constructs a Service from a set of already-built provider clients
// (nil entries for providers that were not configured due to missing
// credentials are simply omitted from clients). The mock client is always
// registered regardless of what is passed in.
func New(clients map[string]llmprovider.Client, logger telemetry.Logger) *Service {
	reg := make(map[string]llmprovider.Client, len(clients)+1)
	for name, c := range clients {
		if c == nil {
			continue
		}
		reg[name] = c
	}
	if _, ok := reg["mock"]; !ok {
		reg["mock"] = llmprovider.NewMock()
	}
	return &Service{clients: reg, logger: logger}
}

// Resolve returns the client registered for name. "auto" walks autoOrder
// and returns the first provider that was actually configured, falling
// back to mock (which is always present).
func (s *Service) Resolve(name string) (llmprovider.Client, error) {
	if name == "" || name == "auto" {
		for _, candidate := range autoOrder {
			if c, ok := s.clients[candidate]; ok {
				return c, nil
			}
		}
		return s.clients["mock"], nil
	}
	c, ok := s.clients[name]
	if !ok {
		if knownProviders[name] {
			return nil, llmprovider.Unavailable(name, "not configured")
		}
		return nil, llmprovider.Unknown(name)
	}
	return c, nil
}

// Generate resolves providerName and performs the completion, returning the
// resolved provider's name alongside the response so callers can record
// which provider actually served the request (relevant when providerName
// was "auto").
func (s *Service) Generate(ctx context.Context, providerName string, req llmprovider.Request) (string, llmprovider.Response, error) {
	client, err := s.Resolve(providerName)
	if err != nil {
		return "", llmprovider.Response{}, err
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return client.Name(), llmprovider.Response{}, err
	}
	return client.Name(), resp, nil
}

// Cost prices a completed call using the named provider's pricing table.
func (s *Service) Cost(providerName string, inputTokens, outputTokens int, model string) float64 {
	client, err := s.Resolve(providerName)
	if err != nil {
		return 0
	}
	return client.CalculateCost(inputTokens, outputTokens, model)
}

// WarnUnconfigured logs a warning that a provider was requested in
// configuration but has no usable credentials, matching the original
// service's "warn and continue without this provider" startup behavior.
func WarnUnconfigured(ctx context.Context, logger telemetry.Logger, provider, reason string) {
	if logger == nil {
		return
	}
	logger.Warn(ctx, "llm provider not configured, continuing without it", "provider", provider, "reason", reason)
}
