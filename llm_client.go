package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// RateLimitedLLM wraps an LLM client with rate limiting and retry capabilities.
// Topic sorting sends one request per question, so the limiter keeps a batch
// inside the provider's quota.
type RateLimitedLLM struct {
	llm         llms.Model
	rateLimiter *rate.Limiter
	maxRetries  int
	backoffMin  time.Duration
	backoffMax  time.Duration
}

// RateLimitConfig holds configuration for rate limiting and retries
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute.
	// If 0 or negative, no rate limiting is applied.
	RequestsPerMinute float64

	// MaxRetries is the maximum number of retry attempts. Defaults to 3.
	MaxRetries int

	// BackoffMaxWait is the maximum wait time between retries. Defaults to 30 seconds.
	BackoffMaxWait time.Duration
}

// NewRateLimitedLLM creates a new rate-limited LLM client
func NewRateLimitedLLM(llm llms.Model, config RateLimitConfig) *RateLimitedLLM {
	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerMinute/60.0), 1)
	}

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoffMax := config.BackoffMaxWait
	if backoffMax <= 0 {
		backoffMax = 30 * time.Second
	}

	return &RateLimitedLLM{
		llm:         llm,
		rateLimiter: limiter,
		maxRetries:  maxRetries,
		backoffMin:  time.Second,
		backoffMax:  backoffMax,
	}
}

// backoff returns the wait before retry attempt n with +/- 20% jitter.
func (r *RateLimitedLLM) backoff(attempt int) time.Duration {
	d := r.backoffMin * time.Duration(1<<uint(attempt))
	if d > r.backoffMax || d <= 0 {
		d = r.backoffMax
	}
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}

// do waits for the limiter once, then runs fn until it succeeds, the
// retries run out or ctx is done.
func do[T any](ctx context.Context, r *RateLimitedLLM, fn func() (T, error)) (T, error) {
	var zero T
	if r.rateLimiter != nil {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= r.maxRetries {
			if attempt > 0 {
				return zero, fmt.Errorf("all retry attempts failed, last error: %w", err)
			}
			return zero, err
		}
		log.Debugf("LLM request failed (attempt %d/%d): %v", attempt+1, r.maxRetries+1, err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
}

// Call implements the llms.Model interface
func (r *RateLimitedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return do(ctx, r, func() (string, error) {
		return r.llm.Call(ctx, prompt, options...)
	})
}

// GenerateContent implements the llms.Model interface with rate limiting and retries
func (r *RateLimitedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return do(ctx, r, func() (*llms.ContentResponse, error) {
		return r.llm.GenerateContent(ctx, messages, options...)
	})
}
