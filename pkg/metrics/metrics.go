// Package metrics exposes the reactive engine and node runtime as
// Prometheus metrics. A Collector implements both strand.Instrumentation
// and vnode.Observer; install it with strand.SetInstrumentation and
// vnode.WithObserver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strand-ui/strand/pkg/strand"
	"github.com/strand-ui/strand/pkg/vnode"
)

type config struct {
	namespace   string
	subsystem   string
	constLabels prometheus.Labels
	registerer  prometheus.Registerer

	durationBuckets []float64
	fanoutBuckets   []float64
}

// Option configures a Collector at creation.
type Option interface {
	apply(cfg *config)
}

type optionFunc func(*config)

func (f optionFunc) apply(cfg *config) { f(cfg) }

// WithNamespace sets the metric namespace. Defaults to "strand".
func WithNamespace(ns string) Option {
	return optionFunc(func(cfg *config) { cfg.namespace = ns })
}

// WithSubsystem sets the metric subsystem. Empty by default.
func WithSubsystem(sub string) Option {
	return optionFunc(func(cfg *config) { cfg.subsystem = sub })
}

// WithConstLabels attaches constant labels to every metric, typically an
// app or instance identifier.
func WithConstLabels(labels prometheus.Labels) Option {
	return optionFunc(func(cfg *config) { cfg.constLabels = labels })
}

// WithRegisterer registers the metrics with a custom registerer instead of
// the default registry. Tests use this to keep registrations isolated.
func WithRegisterer(reg prometheus.Registerer) Option {
	return optionFunc(func(cfg *config) { cfg.registerer = reg })
}

// WithDurationBuckets overrides the flush duration histogram buckets.
func WithDurationBuckets(buckets []float64) Option {
	return optionFunc(func(cfg *config) { cfg.durationBuckets = buckets })
}

// Collector holds the engine metrics. Create one per process with New.
type Collector struct {
	watcherRuns    *prometheus.CounterVec
	signalTriggers prometheus.Counter
	signalFanout   prometheus.Histogram
	flushJobs      prometheus.Histogram
	flushDuration  prometheus.Histogram
	nodesRendered  *prometheus.CounterVec
	nodesMounted   *prometheus.CounterVec
	nodesUnmounted *prometheus.CounterVec
	patchOps       prometheus.Histogram
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	cfg := config{
		namespace:       "strand",
		registerer:      prometheus.DefaultRegisterer,
		durationBuckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		fanoutBuckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	factory := promauto.With(cfg.registerer)
	return &Collector{
		watcherRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "watcher_runs_total",
			Help:        "Watcher executions by flush mode.",
			ConstLabels: cfg.constLabels,
		}, []string{"flush"}),
		signalTriggers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "signal_triggers_total",
			Help:        "Signal triggers observed.",
			ConstLabels: cfg.constLabels,
		}),
		signalFanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "signal_fanout",
			Help:        "Subscribers notified per signal trigger.",
			ConstLabels: cfg.constLabels,
			Buckets:     cfg.fanoutBuckets,
		}),
		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "flush_jobs",
			Help:        "Jobs drained per flush.",
			ConstLabels: cfg.constLabels,
			Buckets:     cfg.fanoutBuckets,
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Wall time per flush.",
			ConstLabels: cfg.constLabels,
			Buckets:     cfg.durationBuckets,
		}),
		nodesRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "nodes_rendered_total",
			Help:        "Virtual nodes rendered by kind.",
			ConstLabels: cfg.constLabels,
		}, []string{"kind"}),
		nodesMounted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "nodes_mounted_total",
			Help:        "Virtual nodes mounted by kind.",
			ConstLabels: cfg.constLabels,
		}, []string{"kind"}),
		nodesUnmounted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "nodes_unmounted_total",
			Help:        "Virtual nodes unmounted by kind.",
			ConstLabels: cfg.constLabels,
		}, []string{"kind"}),
		patchOps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Subsystem:   cfg.subsystem,
			Name:        "patch_ops",
			Help:        "Host mutations per patch pass.",
			ConstLabels: cfg.constLabels,
			Buckets:     cfg.fanoutBuckets,
		}),
	}
}

// WatcherRan implements strand.Instrumentation.
func (c *Collector) WatcherRan(mode strand.FlushMode) {
	c.watcherRuns.WithLabelValues(mode.String()).Inc()
}

// SignalTriggered implements strand.Instrumentation.
func (c *Collector) SignalTriggered(fanout int) {
	c.signalTriggers.Inc()
	c.signalFanout.Observe(float64(fanout))
}

// FlushCompleted implements strand.Instrumentation.
func (c *Collector) FlushCompleted(jobs int, elapsed time.Duration) {
	c.flushJobs.Observe(float64(jobs))
	c.flushDuration.Observe(elapsed.Seconds())
}

// NodeRendered implements vnode.Observer.
func (c *Collector) NodeRendered(kind vnode.VKind) {
	c.nodesRendered.WithLabelValues(kind.String()).Inc()
}

// NodeMounted implements vnode.Observer.
func (c *Collector) NodeMounted(kind vnode.VKind) {
	c.nodesMounted.WithLabelValues(kind.String()).Inc()
}

// NodeUnmounted implements vnode.Observer.
func (c *Collector) NodeUnmounted(kind vnode.VKind) {
	c.nodesUnmounted.WithLabelValues(kind.String()).Inc()
}

// PatchApplied implements vnode.Observer.
func (c *Collector) PatchApplied(ops int) {
	c.patchOps.Observe(float64(ops))
}
