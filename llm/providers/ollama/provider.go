// Package ollama implements the Hivemind model gateway against a local
// Ollama server. Only the non-streaming chat endpoint is used; the
// coordination engine is a blocking, sequential driver.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/types"
)

// Config holds the Ollama provider configuration.
type Config struct {
	// Host is the Ollama server base URL, e.g. "http://localhost:11434".
	Host string

	// DefaultModel is used when the request does not name a model.
	DefaultModel string

	// Timeout is the HTTP client timeout. Defaults to 2m if zero.
	Timeout time.Duration

	// RequestsPerSecond, when positive, rate-limits outgoing calls.
	RequestsPerSecond float64
}

// Provider is the Ollama implementation of llm.Provider.
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates an Ollama provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Provider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.With(zap.String("component", "ollama_provider")),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "ollama" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	CreatedAt       time.Time   `json:"created_at"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Completion issues a non-streaming chat request against /api/chat.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &llm.Error{
				Code: llm.ErrUpstreamTimeout, Message: err.Error(),
				Retryable: false, Provider: p.Name(),
			}
		}
	}

	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}

	body := chatRequest{
		Model:    model,
		Messages: convertMessages(req.Messages),
		Stream:   false,
	}
	if req.Temperature > 0 {
		body.Options = map[string]any{"temperature": req.Temperature}
	}
	if req.MaxTokens > 0 {
		if body.Options == nil {
			body.Options = map[string]any{}
		}
		body.Options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/api/chat"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, p.mapHTTPError(resp.StatusCode, resp.Body)
	}

	var oResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
		}
	}

	p.logger.Debug("chat completion",
		zap.String("model", oResp.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("eval_count", oResp.EvalCount),
	)

	out := &llm.ChatResponse{
		Provider:  p.Name(),
		Model:     oResp.Model,
		Message:   types.NewAssistantMessage(oResp.Message.Content),
		CreatedAt: oResp.CreatedAt,
		Usage: llm.ChatUsage{
			PromptTokens:     oResp.PromptEvalCount,
			CompletionTokens: oResp.EvalCount,
			TotalTokens:      oResp.PromptEvalCount + oResp.EvalCount,
		},
	}
	return out, nil
}

// HealthCheck probes /api/tags for reachability.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/api/tags"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("ollama health check failed: status=%d", resp.StatusCode)
	}
	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.Host, "/") + path
}

func (p *Provider) mapHTTPError(status int, body io.Reader) *llm.Error {
	msg := readErrorMessage(body)
	e := &llm.Error{Message: msg, HTTPStatus: status, Provider: p.Name()}
	switch {
	case status == http.StatusNotFound:
		e.Code = llm.ErrModelNotFound
	case status == http.StatusBadRequest:
		e.Code = llm.ErrInvalidRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = llm.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		e.Code = llm.ErrRateLimited
		e.Retryable = true
	case status == http.StatusServiceUnavailable:
		e.Code = llm.ErrModelOverloaded
		e.Retryable = true
	case status >= 500:
		e.Code = llm.ErrUpstreamError
		e.Retryable = true
	default:
		e.Code = llm.ErrUpstreamError
	}
	return e
}

func convertMessages(msgs []types.Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// readErrorMessage extracts {"error": "..."} bodies, falling back to raw text.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "unknown error"
	}
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(data))
}
