package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func fastOptions() Options {
	return Options{
		Config: Config{
			MaxRetries:      2,
			BaseDelay:       time.Millisecond,
			MaxDelay:        2 * time.Millisecond,
			BackoffMultiple: 2,
		},
		ErrorChecker: func(err error) bool { return errors.Is(err, errTransient) },
		Operation:    "fetch",
	}
}

func TestExecute_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := Execute(context.Background(), fastOptions(), func(attempt int) (int, error) {
		calls++
		if attempt < 2 {
			return 0, errTransient
		}
		return 7, nil
	})

	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	if got != 7 || calls != 3 {
		t.Errorf("Expected 7 after 3 calls, got %d after %d", got, calls)
	}
}

func TestExecute_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := Execute(context.Background(), fastOptions(), func(int) (int, error) {
		calls++
		return 0, permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Expected permanent error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected a single call, got %d", calls)
	}
}

func TestExecute_Exhausted(t *testing.T) {
	_, err := Execute(context.Background(), fastOptions(), func(int) (string, error) {
		return "", errTransient
	})

	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected RetryExhaustedError, got: %v", err)
	}
	if exhausted.MaxAttempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", exhausted.MaxAttempts)
	}
	if !errors.Is(err, errTransient) {
		t.Error("Expected exhausted error to wrap the last failure")
	}
}

func TestExecute_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := fastOptions()
	opts.Config.BaseDelay = time.Hour
	opts.Config.MaxDelay = time.Hour

	_, err := Execute(ctx, opts, func(int) (int, error) {
		cancel()
		return 0, errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestCalculateDelay_Capped(t *testing.T) {
	c := DefaultConfig()
	if d := c.calculateDelay(0); d != c.BaseDelay {
		t.Errorf("Expected base delay, got %v", d)
	}
	if d := c.calculateDelay(20); d != c.MaxDelay {
		t.Errorf("Expected max delay, got %v", d)
	}
}
