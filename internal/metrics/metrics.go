// Package metrics exposes prometheus/client_golang counters and histograms
// for the compiler pipeline and runtime update loop. rashadism-openchoreo
// carries prometheus/client_golang as its own metrics dependency (though it
// uses it to query an external Prometheus server rather than to register
// instruments); this package uses the library the other, more common way —
// promauto-registered instruments on a private Registry.
//
// This module never starts an HTTP listener for it. A host process that
// wants /metrics wires Registry.Gatherer into its own promhttp.Handler;
// nothing here owns a port.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds one project's instruments, registered against a private
// prometheus.Registry rather than the global DefaultRegisterer so that
// multiple compiles (e.g. concurrent test runs) never collide.
type Registry struct {
	reg *prometheus.Registry

	CompilePhaseDuration *prometheus.HistogramVec
	StringDedupRatio     prometheus.Gauge
	ObserverNotifications *prometheus.CounterVec
	EventQueueOverflows  prometheus.Counter
	UpdateDuration       prometheus.Histogram
	RenderDuration       prometheus.Histogram
}

// New builds a Registry with all instruments registered and ready to
// observe.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,

		CompilePhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kryon",
			Subsystem: "compiler",
			Name:      "phase_duration_seconds",
			Help:      "Wall-clock time spent in each compiler pass (lex, parse, expand, codegen).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),

		StringDedupRatio: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "kryon",
			Subsystem: "compiler",
			Name:      "string_dedup_ratio",
			Help:      "Fraction of string-table slots saved by deduplication in the last build (0 = no dedup, 1 = every reference shared one slot).",
		}),

		ObserverNotifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kryon",
			Subsystem: "runtime",
			Name:      "observer_notifications_total",
			Help:      "State-change observer callbacks fired, labeled by variable path.",
		}, []string{"path"}),

		EventQueueOverflows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kryon",
			Subsystem: "runtime",
			Name:      "event_queue_overflows_total",
			Help:      "Times an event was dropped because the event queue was full.",
		}),

		UpdateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kryon",
			Subsystem: "runtime",
			Name:      "update_duration_seconds",
			Help:      "Wall-clock time spent in one state-update-to-settled-tree cycle (directive reconcile + layout).",
			Buckets:   prometheus.DefBuckets,
		}),

		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kryon",
			Subsystem: "runtime",
			Name:      "render_duration_seconds",
			Help:      "Wall-clock time spent emitting the render-command stream for one frame.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Gatherer exposes the underlying registry so a host process can scrape it
// through its own promhttp.Handler. This module never serves it itself.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObservePhase records how long a named compiler pass took.
func (r *Registry) ObservePhase(phase string, d time.Duration) {
	r.CompilePhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetDedupRatio records the string-table dedup ratio for the last build.
func (r *Registry) SetDedupRatio(ratio float64) {
	r.StringDedupRatio.Set(ratio)
}

// NotifyObserver increments the per-path observer-notification counter.
func (r *Registry) NotifyObserver(path string) {
	r.ObserverNotifications.WithLabelValues(path).Inc()
}

// DropEvent increments the event-queue-overflow counter.
func (r *Registry) DropEvent() {
	r.EventQueueOverflows.Inc()
}

// ObserveUpdate records how long one update cycle took.
func (r *Registry) ObserveUpdate(d time.Duration) {
	r.UpdateDuration.Observe(d.Seconds())
}

// ObserveRender records how long one render-command emission pass took.
func (r *Registry) ObserveRender(d time.Duration) {
	r.RenderDuration.Observe(d.Seconds())
}
