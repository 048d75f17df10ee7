package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProviderDisabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Nil(t, tp.provider)

	// shutdown on a no-op provider is a no-op
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test-span")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
}

func TestStartServiceSpan(t *testing.T) {
	ctx, span := StartServiceSpan(context.Background(), "IssuanceService", "IssueInvoice")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()
}
