// Package metrics exports runtime and session activity as Prometheus
// metrics.
//
// A *Metrics is both a runtime.Observer and a server.Hooks:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	srv := server.New(prog, config, server.WithObserver(m), server.WithHooks(m))
//	srv.Router().Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Metrics collected (default namespace "reflow"):
//   - reflow_actions_total: actions processed, by whether the state changed
//   - reflow_action_duration_seconds: reducer time including task emission
//   - reflow_tasks_emitted_total / reflow_task_failures_total
//   - reflow_renders_total: renders, by whether a diff was produced
//   - reflow_render_duration_seconds
//   - reflow_diff_ops_total: diff operations by op
//   - reflow_handlers_missing_total: stale or unknown handler firings
//   - reflow_active_sessions, reflow_session_duration_seconds
//   - reflow_handshake_failures_total: by handshake status
//   - reflow_events_received_total, reflow_patch_bytes_total
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/runtime"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "reflow").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for action and render durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reflow",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	actionsTotal    *prometheus.CounterVec
	actionDuration  prometheus.Histogram
	tasksEmitted    prometheus.Counter
	taskFailures    prometheus.Counter
	rendersTotal    *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	diffOps         *prometheus.CounterVec
	handlersMissing prometheus.Counter

	activeSessions   prometheus.Gauge
	sessionDuration  prometheus.Histogram
	handshakeFailure *prometheus.CounterVec
	eventsReceived   prometheus.Counter
	patchBytes       prometheus.Counter
}

// New registers the collectors with the configured registry.
// Registering twice with the same registry panics.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}
	histogram := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     buckets,
		}
	}

	return &Metrics{
		actionsTotal: factory.NewCounterVec(
			counter("actions_total", "Total number of actions processed"),
			[]string{"state_changed"}),
		actionDuration: factory.NewHistogram(
			histogram("action_duration_seconds", "Reducer duration in seconds", config.Buckets)),
		tasksEmitted: factory.NewCounter(
			counter("tasks_emitted_total", "Total number of deferred tasks emitted by reducers")),
		taskFailures: factory.NewCounter(
			counter("task_failures_total", "Total number of deferred tasks that returned an error")),
		rendersTotal: factory.NewCounterVec(
			counter("renders_total", "Total number of renders"),
			[]string{"changed"}),
		renderDuration: factory.NewHistogram(
			histogram("render_duration_seconds", "Render duration in seconds, diff included", config.Buckets)),
		diffOps: factory.NewCounterVec(
			counter("diff_ops_total", "Total number of diff operations by op"),
			[]string{"op"}),
		handlersMissing: factory.NewCounter(
			counter("handlers_missing_total", "Total number of firings for unknown or stale handler ids")),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),
		sessionDuration: factory.NewHistogram(
			histogram("session_duration_seconds", "Session lifetime in seconds",
				[]float64{1, 10, 60, 300, 900, 3600, 14400})),
		handshakeFailure: factory.NewCounterVec(
			counter("handshake_failures_total", "Total number of rejected handshakes by status"),
			[]string{"status"}),
		eventsReceived: factory.NewCounter(
			counter("events_received_total", "Total number of event frames accepted")),
		patchBytes: factory.NewCounter(
			counter("patch_bytes_total", "Total bytes of patch frames sent")),
	}
}

// ActionProcessed implements runtime.Observer.
func (m *Metrics) ActionProcessed(s runtime.ActionStats) {
	m.actionsTotal.WithLabelValues(strconv.FormatBool(s.StateChanged)).Inc()
	m.actionDuration.Observe(s.Duration.Seconds())
	m.tasksEmitted.Add(float64(s.Tasks))
}

// RenderFinished implements runtime.Observer.
func (m *Metrics) RenderFinished(s runtime.RenderStats) {
	m.rendersTotal.WithLabelValues(strconv.FormatBool(s.Changed)).Inc()
	m.renderDuration.Observe(s.Duration.Seconds())
	for op, n := range s.Ops {
		m.diffOps.WithLabelValues(op.String()).Add(float64(n))
	}
}

// HandlerMissing implements runtime.Observer.
func (m *Metrics) HandlerMissing(string) {
	m.handlersMissing.Inc()
}

// TaskFailed implements runtime.Observer.
func (m *Metrics) TaskFailed(error) {
	m.taskFailures.Inc()
}

// SessionOpened implements server.Hooks.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed implements server.Hooks.
func (m *Metrics) SessionClosed(lifetime time.Duration) {
	m.activeSessions.Dec()
	m.sessionDuration.Observe(lifetime.Seconds())
}

// HandshakeFailed implements server.Hooks.
func (m *Metrics) HandshakeFailed(status protocol.HandshakeStatus) {
	m.handshakeFailure.WithLabelValues(status.String()).Inc()
}

// EventReceived implements server.Hooks.
func (m *Metrics) EventReceived() {
	m.eventsReceived.Inc()
}

// PatchSent implements server.Hooks.
func (m *Metrics) PatchSent(bytes int) {
	m.patchBytes.Add(float64(bytes))
}
