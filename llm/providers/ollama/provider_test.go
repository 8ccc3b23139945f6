package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/types"
)

func TestCompletion(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(chatResponse{
			Model:           gotReq.Model,
			CreatedAt:       time.Now(),
			Message:         chatMessage{Role: "assistant", Content: "hello from ollama"},
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       7,
		})
	}))
	defer srv.Close()

	p := New(Config{Host: srv.URL, DefaultModel: "llama3.1"}, zap.NewNop())
	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{
			types.NewSystemMessage("be brief"),
			types.NewUserMessage("hi"),
		},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello from ollama", resp.Message.Content)
	assert.Equal(t, types.RoleAssistant, resp.Message.Role)
	assert.Equal(t, 19, resp.Usage.TotalTokens)

	assert.Equal(t, "llama3.1", gotReq.Model)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestCompletion_HTTPErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{"model not found", http.StatusNotFound, llm.ErrModelNotFound, false},
		{"rate limited", http.StatusTooManyRequests, llm.ErrRateLimited, true},
		{"overloaded", http.StatusServiceUnavailable, llm.ErrModelOverloaded, true},
		{"server error", http.StatusInternalServerError, llm.ErrUpstreamError, true},
		{"bad request", http.StatusBadRequest, llm.ErrInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			p := New(Config{Host: srv.URL}, zap.NewNop())
			_, err := p.Completion(context.Background(), &llm.ChatRequest{Model: "m"})
			require.Error(t, err)

			llmErr, ok := err.(*llm.Error)
			require.True(t, ok, "expected *llm.Error, got %T", err)
			assert.Equal(t, tt.wantCode, llmErr.Code)
			assert.Equal(t, tt.retryable, llmErr.Retryable)
			assert.Equal(t, "nope", llmErr.Message)
		})
	}
}

func TestCompletion_TransportError(t *testing.T) {
	p := New(Config{Host: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, zap.NewNop())
	_, err := p.Completion(context.Background(), &llm.ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.True(t, llm.IsRetryable(err))
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	p := New(Config{Host: srv.URL}, zap.NewNop())
	status, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
