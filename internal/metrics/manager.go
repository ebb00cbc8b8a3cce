package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	factory   promauto.Factory
	namespace string
	subsystem string

	// counters
	CounterRequests          *prometheus.CounterVec
	CounterMutations         *prometheus.CounterVec
	CounterSessions          *prometheus.CounterVec
	CounterTimerEvents       *prometheus.CounterVec
	CounterPersistenceErrors prometheus.Counter
	CounterImportedSessions  prometheus.Counter

	// gauges
	GaugeRequests      prometheus.Gauge
	GaugeActiveSession prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test", reg), reg
}

// SetupPrometheus returns a registry with the Go runtime and process collectors.
func SetupPrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		factory:   factory,
		namespace: namespace,
		subsystem: subsystem,

		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_mutations",
			Help:      "Session mutations by operation and result",
		}, []string{"op", "result"}),
		CounterSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions",
			Help:      "Session lifecycle transitions",
		}, []string{"outcome"}),
		CounterTimerEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rest_timer_events",
			Help:      "Rest timer starts, completions and cancellations",
		}, []string{"kind"}),
		CounterPersistenceErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "persistence_errors",
			Help:      "Snapshot writes or reads that failed",
		}),
		CounterImportedSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "imported_sessions",
			Help:      "Completed sessions added by history imports",
		}),

		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeActiveSession: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_session",
			Help:      "1 while a workout is in progress",
		}),

		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// CacheStats is implemented by storage.Cached.
type CacheStats interface {
	HitCount() int64
	MissCount() int64
}

// WatchCache exports the snapshot cache counters.
func (m *Manager) WatchCache(c CacheStats) {
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_hits",
		Help:      "Snapshot reads served from the cache",
	}, func() float64 { return float64(c.HitCount()) })
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_cache_misses",
		Help:      "Snapshot reads that went to the store",
	}, func() float64 { return float64(c.MissCount()) })
}
