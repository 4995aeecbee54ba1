package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries an operation on transient database failures with
// exponential backoff. Non-transient errors are returned immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var (
	// DefaultRetry covers routine reads and writes.
	DefaultRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
	// CriticalRetry covers writes that must survive connection churn,
	// such as recording a payment the provider already accepted.
	CriticalRetry = RetryPolicy{MaxAttempts: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second}
)

// Do runs fn until it succeeds, the error is not transient, the attempts
// are exhausted, or ctx is cancelled. The last error is returned as-is.
func (p RetryPolicy) Do(ctx context.Context, log *zap.Logger, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransientErr(err) || attempt == attempts {
			return err
		}

		if log != nil {
			log.Warn("retrying database operation",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}

// IsTransientErr reports whether err looks like a connection or timeout
// failure worth retrying. Constraint violations and other logical errors
// never match.
func IsTransientErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"bad connection",
		"i/o timeout",
		"too many connections",
		"connection timed out",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
