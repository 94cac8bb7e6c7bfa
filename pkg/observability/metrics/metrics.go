// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/observability"
)

// Hooks records pipeline, cache, store and tool events. One value
// implements every hook interface.
type Hooks struct {
	validations     *prometheus.CounterVec
	validationFinds *prometheus.CounterVec
	generations     *prometheus.CounterVec
	generateSeconds prometheus.Histogram
	modules         prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	storeOps        *prometheus.CounterVec
	storeSeconds    *prometheus.HistogramVec
	toolCalls       *prometheus.CounterVec
	toolSeconds     *prometheus.HistogramVec
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.StoreHooks    = (*Hooks)(nil)
	_ observability.ToolHooks     = (*Hooks)(nil)
)

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_validations_total",
			Help: "Config validations by outcome",
		}, []string{"result"}),
		validationFinds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_validation_findings_total",
			Help: "Validation findings by severity",
		}, []string{"severity"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_generations_total",
			Help: "Layout syntheses by error code (empty on success)",
		}, []string{"code"}),
		generateSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kitchenplan_generate_duration_seconds",
			Help:    "Layout synthesis duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		modules: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kitchenplan_generated_modules",
			Help:    "Top-level modules per synthesized layout",
			Buckets: prometheus.LinearBuckets(5, 5, 10),
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"event", "key_type"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "kitchenplan_cache_written_bytes_total",
			Help: "Bytes written to the layout cache",
		}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_store_operations_total",
			Help: "Config store operations by backend, operation and result",
		}, []string{"backend", "op", "result"}),
		storeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kitchenplan_store_duration_seconds",
			Help:    "Config store operation duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		toolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchenplan_tool_calls_total",
			Help: "Agent tool calls by tool and error code (empty on success)",
		}, []string{"tool", "code"}),
		toolSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kitchenplan_tool_duration_seconds",
			Help:    "Agent tool call duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

// Register installs h as every global hook.
func (h *Hooks) Register() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetStoreHooks(h)
	observability.SetToolHooks(h)
}

func (h *Hooks) OnValidate(_ context.Context, _ string, errs, warnings int, _ time.Duration) {
	result := "valid"
	if errs > 0 {
		result = "invalid"
	}
	h.validations.WithLabelValues(result).Inc()
	h.validationFinds.WithLabelValues("error").Add(float64(errs))
	h.validationFinds.WithLabelValues("warning").Add(float64(warnings))
}

func (h *Hooks) OnGenerateStart(context.Context, string, int) {}

func (h *Hooks) OnGenerateComplete(_ context.Context, _ string, modules int, d time.Duration, err error) {
	h.generations.WithLabelValues(codeOf(err)).Inc()
	h.generateSeconds.Observe(d.Seconds())
	if err == nil {
		h.modules.Observe(float64(modules))
	}
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues("set", keyType).Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *Hooks) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.storeOps.WithLabelValues(backend, op, result).Inc()
	h.storeSeconds.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (h *Hooks) OnToolCall(_ context.Context, tool string, d time.Duration, err error) {
	h.toolCalls.WithLabelValues(tool, codeOf(err)).Inc()
	h.toolSeconds.WithLabelValues(tool).Observe(d.Seconds())
}

func codeOf(err error) string {
	if err == nil {
		return ""
	}
	if c := errors.GetCode(err); c != "" {
		return string(c)
	}
	return string(errors.ErrCodeInternal)
}
