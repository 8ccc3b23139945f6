package retry

import (
	"context"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/llm"
)

// Provider wraps an llm.Provider with backoff retries so callers get retry
// behavior without holding a Retryer.
type Provider struct {
	inner   llm.Provider
	retryer *Retryer
}

// Wrap decorates provider with the given policy. A nil policy uses
// DefaultPolicy.
func Wrap(provider llm.Provider, policy *Policy, logger *zap.Logger) *Provider {
	return &Provider{
		inner:   provider,
		retryer: New(policy, logger),
	}
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return p.inner.Name() }

// HealthCheck implements llm.Provider.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

// Completion implements llm.Provider with retries on retryable errors.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return p.retryer.Completion(ctx, p.inner, req)
}
