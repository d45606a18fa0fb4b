// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/silverback/pkg/logging"
)

// NonRetryable marks an error that should not be retried. Matching is done
// against this concrete type; a plain %w-wrapped error stays retryable.
type NonRetryable struct {
	Err error
}

func (e *NonRetryable) Error() string { return e.Err.Error() }
func (e *NonRetryable) Unwrap() error { return e.Err }

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
	Log             *logging.Logger
}

// Retry retries a given function with exponential backoff
func Retry(config RetryConfig, action func() error) error {
	interval := config.InitialInterval
	log := config.Log
	if log == nil {
		log = logging.Discard()
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		// Check if this is a non-retryable error
		var nonRetryable *NonRetryable
		if errors.As(err, &nonRetryable) {
			log.Warning("Non-retryable error encountered: %v", err)
			return err
		}

		if attempt < config.MaxRetries {
			log.Warning("Attempt %d/%d failed: %v. Retrying in %s...",
				attempt, config.MaxRetries, err, interval)
			time.Sleep(interval)
			interval = time.Duration(float64(interval) * config.Multiplier)
		} else {
			log.Warning("Attempt %d/%d failed: %v. No more retries.",
				attempt, config.MaxRetries, err)
		}
	}

	return fmt.Errorf("action failed after %d attempts: %w", config.MaxRetries, lastErr)
}
