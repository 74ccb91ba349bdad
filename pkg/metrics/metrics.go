// Package metrics provides Prometheus metrics for the GigMatch engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for the engine and driver.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	commandsProcessed *prometheus.CounterVec
	commandErrors     *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec

	registrations *prometheus.CounterVec
	employments   prometheus.Counter
	completions   prometheus.Counter
	cancellations *prometheus.CounterVec
	platformBans  prometheus.Counter
	monthsTicked  prometheus.Counter

	customersTotal    prometheus.Gauge
	freelancersTotal  prometheus.Gauge
	activeEmployments prometheus.Gauge
	heapSize          *prometheus.GaugeVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "gigmatch",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.commandsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "commands_processed_total",
		Help:      "Commands handled by the driver, by command name.",
	}, []string{"command"})
	m.commandErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "command_errors_total",
		Help:      "Commands that surfaced a failure line, by command name.",
	}, []string{"command"})
	m.commandDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "command_duration_seconds",
		Help:      "Per-command handling latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	m.registrations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "registrations_total",
		Help:      "Successful registrations, by kind (customer|freelancer).",
	}, []string{"kind"})
	m.employments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "employments_total",
		Help:      "Employments opened, both direct and auto-matched.",
	})
	m.completions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "completions_total",
		Help:      "Jobs completed and rated.",
	})
	m.cancellations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cancellations_total",
		Help:      "Cancelled employments, by initiating side.",
	}, []string{"side"})
	m.platformBans = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "platform_bans_total",
		Help:      "Freelancers permanently banned from new employment.",
	})
	m.monthsTicked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "months_simulated_total",
		Help:      "Monthly maintenance ticks executed.",
	})

	m.customersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "customers_total",
		Help:      "Registered customers.",
	})
	m.freelancersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "freelancers_total",
		Help:      "Registered freelancers.",
	})
	m.activeEmployments = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "active_employments",
		Help:      "Currently active employments.",
	})
	m.heapSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "ranking_heap_size",
		Help:      "Elements in the ranking heap, by service category.",
	}, []string{"category"})

	return m
}

// Handler returns an HTTP handler exposing the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global metrics manager instance.
var globalManager = NewManager() //nolint:gochecknoglobals // singleton metrics manager

// Handler exposes the global registry.
func Handler() http.Handler { return globalManager.Handler() }

// Driver-side helpers.

// IncrementCommandsProcessed counts one handled command line.
func IncrementCommandsProcessed(command string) {
	globalManager.commandsProcessed.WithLabelValues(command).Inc()
}

// IncrementCommandErrors counts one command that surfaced a failure line.
func IncrementCommandErrors(command string) {
	globalManager.commandErrors.WithLabelValues(command).Inc()
}

// ObserveCommandDuration records the handling latency of one command.
func ObserveCommandDuration(command string, seconds float64) {
	globalManager.commandDuration.WithLabelValues(command).Observe(seconds)
}

// Engine-side helpers.

// IncrementRegistrations counts one successful registration of the given
// kind (customer or freelancer).
func IncrementRegistrations(kind string) {
	globalManager.registrations.WithLabelValues(kind).Inc()
}

// IncrementEmployments counts one opened employment.
func IncrementEmployments() { globalManager.employments.Inc() }

// IncrementCompletions counts one completed and rated job.
func IncrementCompletions() { globalManager.completions.Inc() }

// IncrementCancellations counts one cancellation by the initiating side.
func IncrementCancellations(side string) {
	globalManager.cancellations.WithLabelValues(side).Inc()
}

// IncrementPlatformBans counts one permanent freelancer ban.
func IncrementPlatformBans() { globalManager.platformBans.Inc() }

// IncrementMonthsSimulated counts one monthly maintenance tick.
func IncrementMonthsSimulated() { globalManager.monthsTicked.Inc() }

// UpdateCustomersTotal sets the registered-customer gauge.
func UpdateCustomersTotal(n int) { globalManager.customersTotal.Set(float64(n)) }

// UpdateFreelancersTotal sets the registered-freelancer gauge.
func UpdateFreelancersTotal(n int) { globalManager.freelancersTotal.Set(float64(n)) }

// UpdateActiveEmployments sets the active-employment gauge.
func UpdateActiveEmployments(n int) { globalManager.activeEmployments.Set(float64(n)) }

// UpdateHeapSize sets the ranking-heap size gauge for one category.
func UpdateHeapSize(category string, n int) {
	globalManager.heapSize.WithLabelValues(category).Set(float64(n))
}
