package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// rateLimitMockLLM implements the llms.Model interface for testing
type rateLimitMockLLM struct {
	mu                sync.Mutex
	callResponses     []string
	callErrors        []error
	callIndex         int
	generateResponses []*llms.ContentResponse
	generateErrors    []error
	generateIndex     int
	prompts           []string
}

func (m *rateLimitMockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.callIndex >= len(m.callResponses) {
		return "", errors.New("no more mock responses")
	}
	response := m.callResponses[m.callIndex]
	var err error
	if m.callIndex < len(m.callErrors) {
		err = m.callErrors[m.callIndex]
	}
	m.callIndex++
	return response, err
}

func (m *rateLimitMockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.generateIndex >= len(m.generateResponses) {
		return nil, errors.New("no more mock responses")
	}
	response := m.generateResponses[m.generateIndex]
	var err error
	if m.generateIndex < len(m.generateErrors) {
		err = m.generateErrors[m.generateIndex]
	}
	m.generateIndex++
	return response, err
}

// contentResponses builds one single-choice response per answer.
func contentResponses(answers ...string) []*llms.ContentResponse {
	out := make([]*llms.ContentResponse, len(answers))
	for i, a := range answers {
		out[i] = &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: a}}}
	}
	return out
}

// fastRetryLLM wraps mock without rate limiting and with millisecond backoff.
func fastRetryLLM(mock llms.Model, retries int) *RateLimitedLLM {
	return &RateLimitedLLM{
		llm:        mock,
		maxRetries: retries,
		backoffMin: time.Millisecond,
		backoffMax: 5 * time.Millisecond,
	}
}

func TestNewRateLimitedLLMDefaults(t *testing.T) {
	tests := []struct {
		name        string
		config      RateLimitConfig
		wantLimiter bool
		wantRetries int
		wantMax     time.Duration
	}{
		{
			name:        "zero config",
			config:      RateLimitConfig{},
			wantLimiter: false,
			wantRetries: 3,
			wantMax:     30 * time.Second,
		},
		{
			name:        "explicit config",
			config:      RateLimitConfig{RequestsPerMinute: 60, MaxRetries: 5, BackoffMaxWait: time.Minute},
			wantLimiter: true,
			wantRetries: 5,
			wantMax:     time.Minute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRateLimitedLLM(&rateLimitMockLLM{}, tc.config)
			assert.Equal(t, tc.wantLimiter, r.rateLimiter != nil)
			assert.Equal(t, tc.wantRetries, r.maxRetries)
			assert.Equal(t, tc.wantMax, r.backoffMax)
			assert.Equal(t, time.Second, r.backoffMin)
		})
	}
}

func TestRateLimitedLLMRetries(t *testing.T) {
	t.Run("Succeeds after transient errors", func(t *testing.T) {
		mock := &rateLimitMockLLM{
			generateResponses: contentResponses("", "", "Topic_1_Cells"),
			generateErrors:    []error{errors.New("503"), errors.New("503"), nil},
		}
		r := fastRetryLLM(mock, 3)

		resp, err := r.GenerateContent(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "Topic_1_Cells", resp.Choices[0].Content)
		assert.Equal(t, 3, mock.generateIndex)
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		mock := &rateLimitMockLLM{
			callResponses: []string{"", "", "", "", ""},
			callErrors: []error{
				errors.New("first"), errors.New("second"), errors.New("third"), errors.New("last"), nil,
			},
		}
		r := fastRetryLLM(mock, 3)

		_, err := r.Call(context.Background(), "prompt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all retry attempts failed")
		assert.Contains(t, err.Error(), "last")
		assert.Equal(t, 4, mock.callIndex, "one attempt plus three retries")
	})

	t.Run("Stops when the context is cancelled", func(t *testing.T) {
		mock := &rateLimitMockLLM{
			callResponses: []string{"", ""},
			callErrors:    []error{errors.New("fail"), errors.New("fail")},
		}
		r := &RateLimitedLLM{llm: mock, maxRetries: 3, backoffMin: time.Hour, backoffMax: time.Hour}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := r.Call(ctx, "prompt")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, mock.callIndex)
	})
}

func TestRateLimitedLLMWaitsForLimiter(t *testing.T) {
	mock := &rateLimitMockLLM{callResponses: []string{"a", "b"}}
	r := fastRetryLLM(mock, 0)
	r.rateLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := r.Call(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = r.Call(ctx, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait failed")
	assert.Equal(t, 1, mock.callIndex)
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	r := &RateLimitedLLM{backoffMin: time.Second, backoffMax: 4 * time.Second}
	for attempt := 0; attempt < 10; attempt++ {
		d := r.backoff(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0.8*float64(time.Second)))
		assert.LessOrEqual(t, d, time.Duration(1.2*float64(4*time.Second)))
	}
}
