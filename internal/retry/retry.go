// Package retry wraps fallible network operations in a retry strategy.
//
// Two strategies exist: Bounded gives up after a fixed number of retries and
// surfaces the last error, Unbounded keeps going until the operation succeeds
// or its context is cancelled. The archive is known to fail transiently under
// load, so Unbounded trades responsiveness for eventual success.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
)

// ErrRetriesExhausted is returned by Bounded once its budget is spent.
// The last operation error is wrapped alongside it.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Policy executes an operation, re-issuing it on failure.
type Policy interface {
	Execute(ctx context.Context, op func() error) error
}

// StatusCoder is implemented by errors that carry an HTTP status code
type StatusCoder interface {
	StatusCode() int
}

// ErrorCategory categorizes errors for backoff decisions
type ErrorCategory int

const (
	// ErrorRetryable - ordinary failure, normal backoff
	ErrorRetryable ErrorCategory = iota
	// ErrorRateLimited - the server asked us to slow down, wait longer
	ErrorRateLimited
	// ErrorPermanent - retrying cannot help, stop immediately
	ErrorPermanent
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that no policy retries it, as for a page the
// archive reports missing or a checksum mismatch.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// CategorizeError determines how a failure should be handled
func CategorizeError(err error) ErrorCategory {
	var pe *permanentError
	if errors.As(err, &pe) {
		return ErrorPermanent
	}
	var sc StatusCoder
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusTooManyRequests {
		return ErrorRateLimited
	}
	return ErrorRetryable
}

// Backoff returns the delay before the retry that follows failed attempt n (0-based)
type Backoff func(attempt int, err error) time.Duration

// NoDelay retries immediately
func NoDelay(int, error) time.Duration { return 0 }

// Fixed waits the same duration between every attempt
func Fixed(d time.Duration) Backoff {
	return func(int, error) time.Duration { return d }
}

// BackoffConfig holds exponential backoff settings
type BackoffConfig struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// Exponential returns a capped exponential backoff with ±25% jitter.
// Rate limited failures always wait MaxDelay.
func Exponential(cfg BackoffConfig) Backoff {
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return func(attempt int, err error) time.Duration {
		if CategorizeError(err) == ErrorRateLimited {
			return cfg.MaxDelay
		}
		return CalculateBackoff(attempt, cfg)
	}
}

// CalculateBackoff calculates the next backoff duration with jitter
func CalculateBackoff(attempt int, cfg BackoffConfig) time.Duration {
	if attempt <= 0 {
		return cfg.BaseDelay
	}

	// base * multiplier^attempt
	delay := float64(cfg.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Multiplier
		if delay > float64(cfg.MaxDelay) {
			break
		}
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	delay += jitter

	return time.Duration(delay)
}

// RetryFunc is called before each retry with the failed attempt number,
// its error and the delay about to be waited
type RetryFunc func(attempt int, err error, wait time.Duration)

// Bounded retries at most MaxRetries times, so an operation runs at most
// MaxRetries+1 times in total.
type Bounded struct {
	MaxRetries int
	Backoff    Backoff
	OnRetry    RetryFunc
}

// Execute runs op until it succeeds or the retry budget is spent
func (b Bounded) Execute(ctx context.Context, op func() error) error {
	retries := b.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := pause(ctx, b.Backoff, b.OnRetry, attempt-1, lastErr); err != nil {
				return err
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if CategorizeError(lastErr) == ErrorPermanent {
			return lastErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, retries+1, lastErr)
}

// Unbounded retries until op succeeds. Only cancelling ctx or a Permanent
// failure stops it.
type Unbounded struct {
	Backoff Backoff
	OnRetry RetryFunc
}

// Execute runs op until it succeeds
func (u Unbounded) Execute(ctx context.Context, op func() error) error {
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if CategorizeError(err) == ErrorPermanent {
			return err
		}
		if perr := pause(ctx, u.Backoff, u.OnRetry, attempt, err); perr != nil {
			return perr
		}
	}
}

func pause(ctx context.Context, backoff Backoff, onRetry RetryFunc, attempt int, lastErr error) error {
	if backoff == nil {
		backoff = NoDelay
	}
	wait := backoff(attempt, lastErr)
	if onRetry != nil {
		onRetry(attempt, lastErr, wait)
	}

	if wait <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w (last error: %v)", err, lastErr)
		}
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry cancelled: %w (last error: %v)", ctx.Err(), lastErr)
	case <-timer.C:
		return nil
	}
}

// FromConfig builds the policy selected by the network settings
func FromConfig(cfg config.NetworkConfig, log logger.Logger) Policy {
	if log == nil {
		log = logger.NewNop()
	}

	backoff := Exponential(BackoffConfig{
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
		Multiplier: cfg.RetryMultiplier,
	})
	onRetry := func(attempt int, err error, wait time.Duration) {
		log.Debug("Retrying request",
			logger.Int("attempt", attempt+1),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	}

	if cfg.InfinityRetry {
		return Unbounded{Backoff: backoff, OnRetry: onRetry}
	}
	return Bounded{MaxRetries: cfg.RetryAttempts, Backoff: backoff, OnRetry: onRetry}
}
