// Package mocks provides test doubles for the model gateway and the
// research retrieval backend. Supports fixed responses, scripted response
// queues, and error injection.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/types"
)

// ProviderCall records a single gateway invocation.
type ProviderCall struct {
	Request  *llm.ChatRequest
	Response *llm.ChatResponse
	Error    error
}

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	response  string
	queue     []string
	err       error
	failAfter int

	completionFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	calls     []ProviderCall
	callCount int
}

// NewProvider creates a mock provider with a fixed default response.
func NewProvider() *Provider {
	return &Provider{response: "Mock response"}
}

// WithResponse sets the fixed response content.
func (m *Provider) WithResponse(response string) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
	return m
}

// WithResponseQueue scripts successive responses; after the queue drains,
// the fixed response is used.
func (m *Provider) WithResponseQueue(responses ...string) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
	return m
}

// WithError makes every call fail with err.
func (m *Provider) WithError(err error) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailAfter fails every call after the first n succeed.
func (m *Provider) WithFailAfter(n int) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// WithCompletionFunc installs a custom completion handler.
func (m *Provider) WithCompletionFunc(fn func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completionFunc = fn
	return m
}

// Name implements llm.Provider.
func (m *Provider) Name() string { return "mock" }

// HealthCheck implements llm.Provider.
func (m *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}

// Completion implements llm.Provider.
func (m *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++

	if m.failAfter > 0 && m.callCount > m.failAfter {
		err := &llm.Error{Code: llm.ErrUpstreamError, Message: "mock provider: configured to fail", Provider: "mock"}
		m.calls = append(m.calls, ProviderCall{Request: req, Error: err})
		return nil, err
	}

	if m.err != nil {
		m.calls = append(m.calls, ProviderCall{Request: req, Error: m.err})
		return nil, m.err
	}

	if m.completionFunc != nil {
		resp, err := m.completionFunc(ctx, req)
		m.calls = append(m.calls, ProviderCall{Request: req, Response: resp, Error: err})
		return resp, err
	}

	content := m.response
	if len(m.queue) > 0 {
		content = m.queue[0]
		m.queue = m.queue[1:]
	}

	resp := &llm.ChatResponse{
		Provider:  "mock",
		Model:     req.Model,
		Message:   types.NewAssistantMessage(content),
		Usage:     llm.ChatUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		CreatedAt: time.Now(),
	}
	m.calls = append(m.calls, ProviderCall{Request: req, Response: resp})
	return resp, nil
}

// Calls returns a copy of all recorded invocations.
func (m *Provider) Calls() []ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProviderCall{}, m.calls...)
}

// CallCount returns the number of invocations.
func (m *Provider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastCall returns the most recent invocation, or nil.
func (m *Provider) LastCall() *ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears recorded state.
func (m *Provider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callCount = 0
	m.err = nil
	m.queue = nil
}

// NewErrorProvider creates a provider that always fails.
func NewErrorProvider(err error) *Provider {
	return NewProvider().WithError(err)
}
