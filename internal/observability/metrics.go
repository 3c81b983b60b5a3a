package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the orchestrator and its
// drivers report against, grouped the way metald/internal/network's
// NetworkMetrics and thc1006's PrometheusMetrics group theirs.
type Metrics struct {
	NetworksConstructedTotal *prometheus.CounterVec
	NetworksTornDownTotal    *prometheus.CounterVec
	ConstructionErrorsTotal  *prometheus.CounterVec

	InterfacesCreatedTotal *prometheus.CounterVec
	InterfacesDeletedTotal *prometheus.CounterVec

	NamespaceWorkersUp   prometheus.Gauge
	NATTablesActive      prometheus.Gauge
	ConstructionDuration *prometheus.HistogramVec
}

// newMetrics registers every collector against reg rather than the global
// default registry, so multiple Observability instances (as in tests) do
// not panic on duplicate registration.
func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NetworksConstructedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fosnet_networks_constructed_total",
				Help: "Total number of virtual network construct attempts, by link kind and outcome.",
			},
			[]string{"link_kind", "outcome"},
		),
		NetworksTornDownTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fosnet_networks_torn_down_total",
				Help: "Total number of virtual network teardown attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		ConstructionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fosnet_construction_errors_total",
				Help: "Construction/teardown errors by vnerr kind.",
			},
			[]string{"kind"},
		),
		InterfacesCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fosnet_interfaces_created_total",
				Help: "Total number of virtual interfaces created, by kind.",
			},
			[]string{"kind"},
		),
		InterfacesDeletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fosnet_interfaces_deleted_total",
				Help: "Total number of virtual interfaces deleted, by kind.",
			},
			[]string{"kind"},
		),
		NamespaceWorkersUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fosnet_namespace_workers_up",
				Help: "Current number of namespace worker processes spawned and not yet killed.",
			},
		),
		NATTablesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fosnet_nat_tables_active",
				Help: "Current number of nftables NAT tables owned by this plugin.",
			},
		),
		ConstructionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fosnet_construction_duration_seconds",
				Help: "Duration of virtual network construction, by link kind.",
			},
			[]string{"link_kind"},
		),
	}
}
