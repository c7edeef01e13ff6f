package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoop_DoesNotPanic(t *testing.T) {
	logger, metrics, tracer := Noop()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.Info(ctx, "hello", "k", "v")
		logger.Warn(ctx, "uh oh")
		metrics.IncCounter("runs_total", 1, "status", "completed")
		_, span := tracer.Start(ctx, "step")
		span.AddEvent("started")
		span.End()
	})
}
