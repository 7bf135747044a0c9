// Package retry provides the resilient-call wrapper shared by all collectors.
// Transient failures are retried with exponential backoff and jitter before
// being surfaced to the caller.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/infrascope/infrascope/internal/pkg/logger"
)

// Config controls retry behavior
type Config struct {
	MaxAttempts  int           `yaml:"max_attempts" validate:"min=1"`
	InitialDelay time.Duration `yaml:"initial_delay" validate:"min=0"`
	Multiplier   float64       `yaml:"multiplier" validate:"min=1"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// DefaultConfig returns the default retry policy: up to 3 attempts,
// 1s base delay, doubling with jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
	}
}

// Permanent marks err as non-retryable. The wrapper returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn with the configured retry policy. Retries stop early when ctx is
// cancelled; the context error is returned in that case.
func Do(ctx context.Context, cfg Config, log *logger.Logger, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.Multiplier = cfg.Multiplier
	if cfg.MaxDelay > 0 {
		b.MaxInterval = cfg.MaxDelay
	}
	b.MaxElapsedTime = 0

	attempts := uint64(0)
	if cfg.MaxAttempts > 1 {
		attempts = uint64(cfg.MaxAttempts - 1)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, attempts), ctx)

	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		log.WithFields(map[string]interface{}{
			"operation": op,
			"attempt":   attempt,
			"next_try":  next.String(),
		}).WithError(err).Warn("operation failed, retrying")
	}

	return backoff.RetryNotify(fn, policy, notify)
}
