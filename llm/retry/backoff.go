// Package retry provides an exponential-backoff retryer for gateway calls.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/llm"
)

// Policy configures retry behavior for model gateway calls.
type Policy struct {
	MaxRetries   int           // maximum retry attempts (0 disables retries)
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // upper bound for the backoff delay
	Multiplier   float64       // exponential growth factor
	Jitter       bool          // add random jitter to avoid thundering herds

	// OnRetry, when set, is invoked before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultPolicy returns a policy suited to LLM API calls.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Retryer executes functions with retries on retryable gateway errors.
type Retryer struct {
	policy *Policy
	logger *zap.Logger
}

// New creates a backoff retryer. A nil policy uses DefaultPolicy.
func New(policy *Policy, logger *zap.Logger) *Retryer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = 1 * time.Second
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 30 * time.Second
	}
	if policy.Multiplier < 1.0 {
		policy.Multiplier = 2.0
	}
	return &Retryer{policy: policy, logger: logger}
}

// Completion runs a gateway completion with retries. Only errors marked
// retryable by the provider are retried; anything else fails immediately.
func (r *Retryer) Completion(ctx context.Context, provider llm.Provider, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.delay(attempt)
			r.logger.Debug("retrying gateway call",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", r.policy.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if r.policy.OnRetry != nil {
				r.policy.OnRetry(attempt, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := provider.Completion(ctx, req)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("gateway call succeeded after retry", zap.Int("attempt", attempt))
			}
			return resp, nil
		}
		lastErr = err

		if !llm.IsRetryable(err) {
			r.logger.Debug("gateway error is not retryable", zap.Error(err))
			return nil, err
		}
	}

	r.logger.Warn("retries exhausted",
		zap.Int("attempts", r.policy.MaxRetries+1),
		zap.Error(lastErr),
	)
	return nil, fmt.Errorf("gateway call failed after %d retries: %w", r.policy.MaxRetries, lastErr)
}

// delay computes the backoff delay for the given attempt.
func (r *Retryer) delay(attempt int) time.Duration {
	d := float64(r.policy.InitialDelay) * math.Pow(r.policy.Multiplier, float64(attempt-1))
	if d > float64(r.policy.MaxDelay) {
		d = float64(r.policy.MaxDelay)
	}
	if r.policy.Jitter {
		jitter := d * 0.25
		d = d + (rand.Float64()*2-1)*jitter
	}
	if d < float64(r.policy.InitialDelay) {
		d = float64(r.policy.InitialDelay)
	}
	return time.Duration(d)
}
