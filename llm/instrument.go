package llm

import (
	"context"
	"time"
)

// MetricsRecorder receives gateway-level measurements. It is satisfied by
// the internal metrics collector.
type MetricsRecorder interface {
	RecordGatewayRequest(provider, model, status string, duration time.Duration)
	RecordTokens(provider, model string, prompt, completion int)
}

// InstrumentedProvider decorates a Provider with request and token metrics.
type InstrumentedProvider struct {
	inner    Provider
	recorder MetricsRecorder
}

// Instrument wraps provider so every completion is measured. A nil recorder
// returns the provider unchanged.
func Instrument(provider Provider, recorder MetricsRecorder) Provider {
	if recorder == nil {
		return provider
	}
	return &InstrumentedProvider{inner: provider, recorder: recorder}
}

// Name implements Provider.
func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

// HealthCheck implements Provider.
func (p *InstrumentedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

// Completion implements Provider, recording status, latency, and token
// usage for every call.
func (p *InstrumentedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := p.inner.Completion(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	p.recorder.RecordGatewayRequest(p.inner.Name(), req.Model, status, time.Since(start))
	if resp != nil {
		p.recorder.RecordTokens(p.inner.Name(), req.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	return resp, err
}
