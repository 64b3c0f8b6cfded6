package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryError reports that every attempt failed
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// RetryingClient wraps a Client with exponential backoff
type RetryingClient struct {
	Client
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingClient wraps next. A MaxAttempts below 1 means a single attempt.
func NewRetryingClient(next Client, config RetryConfig) *RetryingClient {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &RetryingClient{
		Client: next,
		config: config,
		sleep:  sleepContext,
	}
}

// GenerateContent calls the wrapped client until it succeeds, the attempts
// are exhausted, the context ends, or the error is not retryable.
func (c *RetryingClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		text, err := c.Client.GenerateContent(ctx, prompt, tier)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(ctx, err) {
			return "", err
		}
		if attempt == c.config.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, Backoff(c.config.BaseDelay, attempt)); err != nil {
			return "", fmt.Errorf("retry aborted after %d attempts: %w", attempt, err)
		}
	}

	return "", &RetryError{Attempts: c.config.MaxAttempts, Err: lastErr}
}

// Backoff returns the delay after the given failed attempt (1-based).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrUnreadableResponse) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
