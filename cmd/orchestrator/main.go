// Command orchestrator wires the pipeline engine to concrete LLM providers,
// the tool registry, the control-plane state sink, and an HTTP server, then
// serves requests until the process is killed.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bhavana9635/aic-orchestrator/internal/config"
	"github.com/bhavana9635/aic-orchestrator/internal/executor"
	"github.com/bhavana9635/aic-orchestrator/internal/httpapi"
	"github.com/bhavana9635/aic-orchestrator/internal/llmprovider"
	"github.com/bhavana9635/aic-orchestrator/internal/llmservice"
	"github.com/bhavana9635/aic-orchestrator/internal/orchestrator"
	"github.com/bhavana9635/aic-orchestrator/internal/pipeline"
	"github.com/bhavana9635/aic-orchestrator/internal/statesync"
	"github.com/bhavana9635/aic-orchestrator/internal/telemetry"
	"github.com/bhavana9635/aic-orchestrator/internal/tools"
)

func main() {
	pipelinePath := flag.String("pipeline", "", "optional YAML pipeline definition to run once at startup")
	runID := flag.String("run-id", "", "run id to use for -pipeline (a fresh id is minted when empty)")
	flag.Parse()

	cfg := config.Load()

	zapLog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("orchestrator: building logger: %v", err)
	}
	defer zapLog.Sync() //nolint:errcheck
	logger := telemetry.NewZapLogger(zapLog)
	tracer := telemetry.NewOTELTracer("aic-orchestrator")
	metrics := telemetry.NewOTELMetrics("aic-orchestrator")

	ctx := context.Background()
	llm := buildLLMService(ctx, cfg, logger)

	registry := tools.NewRegistry(cfg.TavilyAPIKey, llm)
	exec := executor.New(llm, registry)

	redisClient := buildRedisClient(cfg, logger)
	rest := statesync.NewRESTClient(cfg.APIURL)
	sink := statesync.New(rest, redisClient, logger)

	orch := orchestrator.New(exec, sink,
		orchestrator.WithLogger(logger),
		orchestrator.WithTracer(tracer),
		orchestrator.WithMetrics(metrics),
	)

	if *pipelinePath != "" {
		runStartupPipeline(orch, *pipelinePath, *runID, logger)
	}

	handler := httpapi.New(orch, redisClient, logger)

	logger.Info(ctx, "orchestrator listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, handler.Routes()); err != nil {
		log.Fatalf("orchestrator: serve: %v", err)
	}
}

// buildLLMService constructs a provider client for every credentialed
// backend and registers them with the service, warning (not failing) when a
// provider's credentials are absent.
func buildLLMService(ctx context.Context, cfg config.Config, logger telemetry.Logger) *llmservice.Service {
	limiter := llmprovider.NewAdaptiveRateLimiter(60000, 60000)
	clients := make(map[string]llmprovider.Client, 3)

	if cfg.OpenAIAPIKey != "" {
		client, err := llmprovider.NewOpenAIFromAPIKey(cfg.OpenAIAPIKey, llmprovider.OpenAIOptions{
			DefaultModel: cfg.OpenAIModel,
			MaxTokens:    cfg.OpenAIMaxTokens,
		})
		if err != nil {
			logger.Warn(ctx, "openai client construction failed, continuing without it", "error", err)
		} else {
			clients["openai"] = limiter.Wrap(client)
		}
	} else {
		llmservice.WarnUnconfigured(ctx, logger, "openai", "OPENAI_API_KEY not set")
	}

	if cfg.AnthropicAPIKey != "" {
		client, err := llmprovider.NewAnthropicFromAPIKey(cfg.AnthropicAPIKey, llmprovider.AnthropicOptions{
			DefaultModel: cfg.AnthropicModel,
			MaxTokens:    cfg.AnthropicMaxTokens,
		})
		if err != nil {
			logger.Warn(ctx, "anthropic client construction failed, continuing without it", "error", err)
		} else {
			clients["anthropic"] = limiter.Wrap(client)
		}
	} else {
		llmservice.WarnUnconfigured(ctx, logger, "anthropic", "ANTHROPIC_API_KEY not set")
	}

	if awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion)); err != nil {
		logger.Warn(ctx, "aws config load failed, continuing without bedrock", "error", err)
	} else if awsCfg.Credentials == nil {
		logger.Warn(ctx, "no aws credentials provider, continuing without bedrock")
	} else if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		logger.Warn(ctx, "aws credentials unavailable, continuing without bedrock", "error", err)
	} else {
		runtime := bedrockruntime.NewFromConfig(awsCfg)
		client, err := llmprovider.NewBedrock(llmprovider.BedrockOptions{
			Runtime:      runtime,
			DefaultModel: cfg.BedrockModel,
			MaxTokens:    cfg.AnthropicMaxTokens,
		})
		if err != nil {
			logger.Warn(ctx, "bedrock client construction failed, continuing without it", "error", err)
		} else {
			clients["bedrock"] = limiter.Wrap(client)
		}
	}

	return llmservice.New(clients, logger)
}

// buildRedisClient parses REDIS_URL into a client. A parse problem degrades
// to a nil client (no connection is attempted here): the state-sync sink and status endpoint
// both tolerate a nil Redis client, matching the reference "best effort
// shadow store" behavior.
func buildRedisClient(cfg config.Config, logger telemetry.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn(context.Background(), "redis url parse failed, continuing without redis shadow store", "url", cfg.RedisURL, "error", err)
		return nil
	}
	return redis.NewClient(opts)
}

func runStartupPipeline(orch *orchestrator.Orchestrator, path, runID string, logger telemetry.Logger) {
	p, err := pipeline.LoadFile(path)
	if err != nil {
		log.Fatalf("orchestrator: loading pipeline %s: %v", path, err)
	}
	if runID == "" {
		runID = orchestrator.NewRunID()
	}
	logger.Info(context.Background(), "running startup pipeline", "path", path, "runId", runID)
	orch.RunAsync(runID, p, pipeline.Context{})
}
