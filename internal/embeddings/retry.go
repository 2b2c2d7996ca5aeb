package embeddings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls retries at the provider boundary.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt; it doubles
	// after each failure.
	InitialBackoff time.Duration
}

// DefaultRetryPolicy matches the 1s/2s/4s schedule used for rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
	}
}

// retryingProvider wraps a Provider with bounded retries for transient
// failures. Core retrieval code never retries; all backoff lives here.
type retryingProvider struct {
	inner  Provider
	policy RetryPolicy
	logger *zap.Logger
}

// WithRetry wraps a provider with the given retry policy.
// A MaxAttempts below 1 is treated as 1 (no retries).
func WithRetry(inner Provider, policy RetryPolicy, logger *zap.Logger) Provider {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryingProvider{inner: inner, policy: policy, logger: logger}
}

// EmbedDocuments retries transient failures with exponential backoff.
func (r *retryingProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.do(ctx, "embed_documents", func() error {
		var callErr error
		vectors, callErr = r.inner.EmbedDocuments(ctx, texts)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery retries transient failures with exponential backoff.
func (r *retryingProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := r.do(ctx, "embed_query", func() error {
		var callErr error
		vector, callErr = r.inner.EmbedQuery(ctx, text)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// Dimension returns the inner provider's dimension.
func (r *retryingProvider) Dimension() int { return r.inner.Dimension() }

// Close closes the inner provider.
func (r *retryingProvider) Close() error { return r.inner.Close() }

// do runs operation up to MaxAttempts times. Non-retryable errors and
// context cancellation end the loop immediately.
func (r *retryingProvider) do(ctx context.Context, operation string, call func() error) error {
	backoff := r.policy.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		r.logger.Warn("embedding call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.policy.MaxAttempts),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, operation, r.policy.MaxAttempts, lastErr)
}
