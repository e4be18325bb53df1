// Package retry decides whether a failed operation is attempted again and how long to wait.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// RetryPolicy defines retry logic for one kind of operation.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// GetBackoffInterval returns the wait before the given attempt (starting from 2).
	GetBackoffInterval(attempt int) time.Duration
	// GetMaxAttempts returns the maximum number of attempts, the first one included.
	GetMaxAttempts() int
}

// NewPolicy creates the default RetryPolicy. A BatchError flagged retryable is retried,
// as is any error matching one of retryable with errors.Is. The interval doubles
// after every attempt. maxAttempts below 1 means a single attempt.
func NewPolicy(maxAttempts int, initialInterval time.Duration, retryable ...error) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &defaultRetryPolicy{
		maxAttempts:     maxAttempts,
		initialInterval: initialInterval,
		retryable:       retryable,
	}
}

type defaultRetryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
	retryable       []error
}

func (p *defaultRetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}

func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var be *exception.BatchError
	if errors.As(err, &be) && be.IsRetryable() {
		return true
	}
	for _, target := range p.retryable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (p *defaultRetryPolicy) GetBackoffInterval(attempt int) time.Duration {
	if attempt <= 2 {
		return p.initialInterval
	}
	return p.initialInterval << (attempt - 2)
}

// Do calls fn until it succeeds, returns an error policy does not retry, or the attempts
// run out. The last error is returned. Waiting stops early when ctx is done.
func Do(ctx context.Context, policy RetryPolicy, name string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= policy.GetMaxAttempts(); attempt++ {
		if attempt > 1 {
			wait := policy.GetBackoffInterval(attempt)
			logger.Warnf("%s failed (attempt %d/%d), retrying in %s: %v", name, attempt-1, policy.GetMaxAttempts(), wait, err)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = fn(ctx); err == nil || !policy.ShouldRetry(err) {
			return err
		}
	}
	return err
}
