package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"itunes-library/internal/logging"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Label tags metrics for this operation (e.g. "library", "database").
	// Empty means "unknown".
	Label string

	sleep func(time.Duration)
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Label:          "library",
	}
}

func (c RetryConfig) label() string {
	if c.Label == "" {
		return "unknown"
	}
	return c.Label
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry("stat", path, config, os.Stat)
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	return withRetry("open", path, config, os.Open)
}

func withRetry[T any](op, path string, config RetryConfig, fn func(string) (T, error)) (T, error) {
	start := time.Now()
	label := config.label()
	obs := observe()
	sleep := config.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var zero T
	var lastErr error
	backoff := config.InitialBackoff

	defer func() {
		obs.ObserveRetryDuration(op, label, time.Since(start).Seconds())
	}()

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		v, err := fn(path)
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				obs.ObserveRetrySuccess(op, label)
			}
			return v, nil
		}

		lastErr = err

		if !isNFSStaleError(err) {
			return zero, err
		}
		obs.ObserveStaleError(op, label)

		// Don't sleep after the last attempt
		if attempt < config.MaxRetries {
			obs.ObserveRetryAttempt(op, label)
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	obs.ObserveRetryFailure(op, label)
	return zero, lastErr
}
