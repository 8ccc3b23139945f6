package retry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/llm"
)

func TestWrap_RetriesTransparently(t *testing.T) {
	inner := &scriptedProvider{
		failures: 1,
		err:      &llm.Error{Code: llm.ErrModelOverloaded, Message: "overloaded", Retryable: true},
	}
	p := Wrap(inner, fastPolicy(2), zap.NewNop())

	assert.Equal(t, "scripted", p.Name())

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message.Content)
	assert.Equal(t, 2, inner.calls)

	health, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Healthy)
}
