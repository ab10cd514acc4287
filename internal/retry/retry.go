package retry

import (
	"context"
	"math"
	"time"
)

// Config holds the configuration for retry logic
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns the retry configuration used for remote prediction stores
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// ErrorChecker reports whether err is transient and the call should be repeated
type ErrorChecker func(err error) bool

// RetryableFunc is one attempt of the operation
type RetryableFunc[T any] func(attempt int) (T, error)

// Logger defines a function for logging retry attempts
type Logger func(message string, args ...interface{})

// Options configures retry behavior
type Options struct {
	Config       Config
	ErrorChecker ErrorChecker
	Logger       Logger
	Operation    string
}

// calculateDelay computes the delay for the given attempt using exponential backoff
func (c Config) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Execute runs fn until it succeeds, fails with a non-retryable error, or the
// retries are exhausted.
func Execute[T any](ctx context.Context, opts Options, fn RetryableFunc[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= opts.Config.MaxRetries; attempt++ {
		// Add delay before retry (but not on first attempt)
		if attempt > 0 {
			delay := opts.Config.calculateDelay(attempt - 1)
			if opts.Logger != nil {
				opts.Logger("%s retry attempt %d/%d after %v delay", opts.Operation, attempt+1, opts.Config.MaxRetries+1, delay)
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := fn(attempt)
		if err == nil {
			if attempt > 0 && opts.Logger != nil {
				opts.Logger("%s succeeded on attempt %d/%d", opts.Operation, attempt+1, opts.Config.MaxRetries+1)
			}
			return result, nil
		}
		lastErr = err

		if opts.ErrorChecker == nil || !opts.ErrorChecker(err) {
			return zero, err
		}
		if opts.Logger != nil {
			opts.Logger("%s transient error (attempt %d/%d): %v", opts.Operation, attempt+1, opts.Config.MaxRetries+1, err)
		}
	}

	return zero, &RetryExhaustedError{
		Operation:   opts.Operation,
		MaxAttempts: opts.Config.MaxRetries + 1,
		Last:        lastErr,
	}
}

// RetryExhaustedError is returned when every attempt failed with a retryable error
type RetryExhaustedError struct {
	Operation   string
	MaxAttempts int
	Last        error
}

func (e *RetryExhaustedError) Error() string {
	return "retry attempts exhausted for " + e.Operation + ": " + e.Last.Error()
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}
