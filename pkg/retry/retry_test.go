package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		Multiplier:      2,
	}
}

func TestRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	err := Retry(fastConfig(5), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	cause := errors.New("server unreachable")
	err := Retry(fastConfig(3), func() error {
		attempts++
		return cause
	})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("final error must wrap the last cause, got %v", err)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := Retry(fastConfig(5), func() error {
		attempts++
		return &NonRetryable{Err: errors.New("checksum mismatch")}
	})
	if err == nil {
		t.Fatal("expected the non-retryable error back")
	}
	if attempts != 1 {
		t.Fatalf("non-retryable error must stop retries; got %d attempts", attempts)
	}
}

func TestRetryStopsOnWrappedNonRetryableError(t *testing.T) {
	attempts := 0
	err := Retry(fastConfig(5), func() error {
		attempts++
		return fmt.Errorf("downloading installer: %w", &NonRetryable{Err: errors.New("checksum mismatch")})
	})
	if err == nil {
		t.Fatal("expected the non-retryable error back")
	}
	if attempts != 1 {
		t.Fatalf("wrapped non-retryable error must stop retries; got %d attempts", attempts)
	}
}

// Ordinary wrapped errors carry an Unwrap method too; only the marker type
// may cut retries short.
func TestRetryWrappedTransientErrorIsRetried(t *testing.T) {
	attempts := 0
	cause := errors.New("connection reset")
	err := Retry(fastConfig(3), func() error {
		attempts++
		return fmt.Errorf("failed to perform HTTP request: %w", cause)
	})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("transient wrapped error retried %d time(s); want 3", attempts)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("final error must wrap the cause, got %v", err)
	}
}

func TestRetryZeroAttemptsNeverRuns(t *testing.T) {
	ran := false
	err := Retry(fastConfig(0), func() error {
		ran = true
		return nil
	})
	if ran {
		t.Fatal("action must not run when MaxRetries is 0")
	}
	if err == nil {
		t.Fatal("expected an error when no attempts were allowed")
	}
}
