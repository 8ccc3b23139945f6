package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eeman1113/Hivemind/types"
)

type fakeRecorder struct {
	requests []string
	prompt   int
	compl    int
}

func (r *fakeRecorder) RecordGatewayRequest(provider, model, status string, _ time.Duration) {
	r.requests = append(r.requests, provider+"/"+model+"/"+status)
}

func (r *fakeRecorder) RecordTokens(_, _ string, prompt, completion int) {
	r.prompt += prompt
	r.compl += completion
}

type staticProvider struct {
	resp *ChatResponse
	err  error
}

func (p *staticProvider) Completion(_ context.Context, _ *ChatRequest) (*ChatResponse, error) {
	return p.resp, p.err
}

func (p *staticProvider) HealthCheck(_ context.Context) (*HealthStatus, error) {
	return &HealthStatus{Healthy: true}, nil
}

func (p *staticProvider) Name() string { return "static" }

func TestInstrument_RecordsSuccessAndTokens(t *testing.T) {
	inner := &staticProvider{resp: &ChatResponse{
		Message: types.NewAssistantMessage("ok"),
		Usage:   ChatUsage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19},
	}}
	rec := &fakeRecorder{}
	p := Instrument(inner, rec)

	_, err := p.Completion(context.Background(), &ChatRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, []string{"static/m/success"}, rec.requests)
	assert.Equal(t, 12, rec.prompt)
	assert.Equal(t, 7, rec.compl)
}

func TestInstrument_RecordsError(t *testing.T) {
	inner := &staticProvider{err: &Error{Code: ErrUpstreamError, Message: "down"}}
	rec := &fakeRecorder{}
	p := Instrument(inner, rec)

	_, err := p.Completion(context.Background(), &ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, []string{"static/m/error"}, rec.requests)
	assert.Zero(t, rec.prompt)
}

func TestInstrument_NilRecorderIsPassthrough(t *testing.T) {
	inner := &staticProvider{}
	assert.Same(t, Provider(inner), Instrument(inner, nil))
}
