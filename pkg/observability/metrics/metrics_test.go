package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/observability"
)

func TestHooksRecord(t *testing.T) {
	ctx := context.Background()
	h := New(prometheus.NewRegistry())

	h.OnValidate(ctx, "k", 2, 1, time.Millisecond)
	h.OnValidate(ctx, "k", 0, 0, time.Millisecond)
	if got := testutil.ToFloat64(h.validations.WithLabelValues("invalid")); got != 1 {
		t.Errorf("invalid validations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.validationFinds.WithLabelValues("error")); got != 2 {
		t.Errorf("error findings = %v, want 2", got)
	}

	h.OnGenerateComplete(ctx, "k", 6, time.Millisecond, nil)
	h.OnGenerateComplete(ctx, "k", 0, time.Millisecond, errors.New(errors.ErrCodeInvalidConfig, "bad"))
	if got := testutil.ToFloat64(h.generations.WithLabelValues("INVALID_CONFIG")); got != 1 {
		t.Errorf("failed generations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.generations.WithLabelValues("")); got != 1 {
		t.Errorf("successful generations = %v, want 1", got)
	}

	h.OnCacheHit(ctx, "layout")
	h.OnCacheSet(ctx, "layout", 512)
	if got := testutil.ToFloat64(h.cacheBytes); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}

	h.OnStoreOp(ctx, "memory", "save", time.Millisecond, nil)
	h.OnStoreOp(ctx, "memory", "get", time.Millisecond, errors.New(errors.ErrCodeConfigNotFound, "gone"))
	if got := testutil.ToFloat64(h.storeOps.WithLabelValues("memory", "get", "error")); got != 1 {
		t.Errorf("store errors = %v, want 1", got)
	}

	h.OnToolCall(ctx, "generateLayout", time.Millisecond, nil)
	if got := testutil.ToFloat64(h.toolCalls.WithLabelValues("generateLayout", "")); got != 1 {
		t.Errorf("tool calls = %v, want 1", got)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()
	h := New(prometheus.NewRegistry())
	h.Register()
	if observability.Pipeline() != h || observability.Store() != h || observability.Tools() != h {
		t.Error("Register() did not install the hooks")
	}
}
