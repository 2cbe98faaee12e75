package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for estimator self-monitoring.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// Provider command metrics
	ProviderCommandDuration *prometheus.HistogramVec
	ProviderCommandFailures *prometheus.CounterVec

	// Migration metrics
	MatcherCallsTotal prometheus.Counter
	ConversionsTotal  *prometheus.CounterVec
	MigrationDuration prometheus.Histogram
	MigrationsTotal   *prometheus.CounterVec

	// Pricing metrics
	PriceLookupsTotal *prometheus.CounterVec
	TopologyCost      *prometheus.GaugeVec

	// Hardware cache metrics
	HardwareCacheItems prometheus.Gauge

	// Report metrics
	ReportSizeBytes *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		ProviderCommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kubeadapt_estimator_provider_command_duration_seconds",
			Help:    "Duration of provider commands in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		ProviderCommandFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_estimator_provider_command_failures_total",
			Help: "Total number of failed provider commands.",
		}, []string{"command"}),

		MatcherCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kubeadapt_estimator_matcher_calls_total",
			Help: "Total number of hardware matcher invocations.",
		}),
		ConversionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_estimator_conversions_total",
			Help: "Total number of instance type substitutions applied.",
		}, []string{"source_type", "target_type"}),
		MigrationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kubeadapt_estimator_migration_duration_seconds",
			Help:    "Duration of topology migrations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		MigrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_estimator_migrations_total",
			Help: "Total number of topology migrations.",
		}, []string{"status"}),

		PriceLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kubeadapt_estimator_price_lookups_total",
			Help: "Total number of price catalog lookups.",
		}, []string{"category", "status"}),
		TopologyCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_estimator_topology_cost",
			Help: "Hourly cost of the last estimated topologies.",
		}, []string{"topology"}),

		HardwareCacheItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kubeadapt_estimator_hardware_cache_items",
			Help: "Number of instance types in the hardware cache.",
		}),

		ReportSizeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kubeadapt_estimator_report_size_bytes",
			Help: "Size of the last written report in bytes.",
		}, []string{"type"}),
	}

	// Register all metrics with the custom registry.
	reg.MustRegister(
		m.ProviderCommandDuration,
		m.ProviderCommandFailures,
		m.MatcherCallsTotal,
		m.ConversionsTotal,
		m.MigrationDuration,
		m.MigrationsTotal,
		m.PriceLookupsTotal,
		m.TopologyCost,
		m.HardwareCacheItems,
		m.ReportSizeBytes,
	)

	return m
}

// WriteTextfile writes the current registry contents to path in the
// Prometheus text format, suitable for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
