package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRetryStopsOnNonTransientError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	wantErr := errors.New("duplicate key value violates unique constraint")
	err := policy.Do(context.Background(), zap.NewNop(), "insert", func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRetryExhaustsTransientError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), zap.NewNop(), "insert", func() error {
		calls++
		return errors.New("dial tcp: connection refused")
	})
	if err == nil {
		t.Fatal("expected retry exhaustion to surface the last error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), zap.NewNop(), "insert", func() error {
		calls++
		if calls < 2 {
			return driver.ErrBadConn
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute, MaxDelay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.Do(ctx, zap.NewNop(), "insert", func() error {
		return driver.ErrBadConn
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestIsTransientErr(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":              {err: nil, want: false},
		"bad conn":         {err: driver.ErrBadConn, want: true},
		"refused":          {err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), want: true},
		"reset":            {err: errors.New("read: connection reset by peer"), want: true},
		"pool exhausted":   {err: errors.New("pq: too many connections"), want: true},
		"duplicate key":    {err: errors.New("duplicate key value violates unique constraint"), want: false},
		"record not found": {err: errors.New("record not found"), want: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := IsTransientErr(tc.err); got != tc.want {
				t.Fatalf("IsTransientErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
