package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	kperrors "github.com/matzehuels/kitchenplan/pkg/errors"
)

func TestNewID(t *testing.T) {
	shape := regexp.MustCompile(`^kitchen-1700000000123-[0-9a-z]{9}$`)
	seen := make(map[string]bool)
	at := time.UnixMilli(1700000000123)
	for i := 0; i < 200; i++ {
		id := newIDAt(at)
		if !shape.MatchString(id) {
			t.Fatalf("id %q has wrong shape", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if err := kperrors.ValidateConfigID(NewID()); err != nil {
		t.Errorf("NewID rejected by ValidateConfigID: %v", err)
	}
}

func TestStamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := &Record{}
	Stamp(rec, now, time.Hour)
	if !rec.Timestamp.Equal(now) || !rec.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Stamp = %v / %v", rec.Timestamp, rec.ExpiresAt)
	}

	earlier := now.Add(-time.Minute)
	rec = &Record{Timestamp: earlier}
	Stamp(rec, now, 0)
	if !rec.Timestamp.Equal(earlier) {
		t.Errorf("Stamp replaced an existing timestamp")
	}
	if !rec.ExpiresAt.IsZero() {
		t.Errorf("zero ttl set ExpiresAt = %v", rec.ExpiresAt)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"no expiry", time.Time{}, false},
		{"future", now.Add(time.Second), false},
		{"now", now, true},
		{"past", now.Add(-time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{ExpiresAt: tt.expires}
			if got := r.Expired(now); got != tt.want {
				t.Errorf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckRecord(t *testing.T) {
	if err := CheckRecord(nil); !kperrors.Is(err, kperrors.ErrCodeInvalidInput) {
		t.Errorf("nil record err = %v", err)
	}
	if err := CheckRecord(&Record{ID: "x"}); !kperrors.Is(err, kperrors.ErrCodeInvalidID) {
		t.Errorf("bad id err = %v", err)
	}
	if err := CheckRecord(&Record{ID: NewID()}); err != nil {
		t.Errorf("valid record err = %v", err)
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("kitchen-1-abcdefghi")
	if !IsNotFound(err) || !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFound does not wrap ErrNotFound: %v", err)
	}
	if kperrors.HTTPStatus(err) != 404 {
		t.Errorf("status = %d", kperrors.HTTPStatus(err))
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := RetryDelay
	RetryDelay = time.Millisecond
	defer func() { RetryDelay = old }()

	ctx := context.Background()
	transient := errors.New("connection reset")

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(transient)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		permanent := errors.New("bad request")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("unwraps after the last attempt", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return Retryable(transient) })
		if err != transient {
			t.Errorf("err = %#v, want the transient error itself", err)
		}
		if IsRetryable(err) {
			t.Error("returned error still marked retryable")
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error { return Retryable(transient) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
}
