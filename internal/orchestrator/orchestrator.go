// Package orchestrator is the top-level component: it composes the
// netlink driver, nftables driver, namespace worker supervisor and DHCP
// manager to realize virtual networks and their interfaces, maintains the
// authoritative logical model in the catalog, and tears construction down
// in reverse.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/eclipse-fog05/fog05-net-linux/internal/catalog"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/observability"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// Config carries the deployment-specific parameters the orchestrator
// needs that spec.md leaves to the implementation: which physical
// interface overlays ride on, where DHCP run-time artifacts live, and how
// to reach a freshly spawned namespace worker.
type Config struct {
	OverlayInterface string
	RunPath          string
	LocatorFunc      func(nsID uuid.UUID) string
}

// Orchestrator is the Virtual-Network Orchestrator of spec.md §4.5.
type Orchestrator struct {
	cfg Config

	netlink  NetlinkDriver
	nftables NFTDriver
	workers  WorkerSupervisor
	dhcp     DHCPManager

	local  catalog.LocalCatalog
	global catalog.GlobalCatalog

	// netLocks serializes construct/teardown of a given network id, per
	// spec §5 ("constructed and torn down from a single caller at a
	// time").
	netLocks sync.Map // uuid.UUID -> *sync.Mutex

	logger *slog.Logger

	metrics *observability.Metrics
	tracer  trace.Tracer
}

// New returns an Orchestrator wired to its collaborators.
func New(
	cfg Config,
	netlink NetlinkDriver,
	nftables NFTDriver,
	workers WorkerSupervisor,
	dhcpMgr DHCPManager,
	local catalog.LocalCatalog,
	global catalog.GlobalCatalog,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		netlink:  netlink,
		nftables: nftables,
		workers:  workers,
		dhcp:     dhcpMgr,
		local:    local,
		global:   global,
		logger:   logger,
	}
}

func (o *Orchestrator) lockFor(id uuid.UUID) *sync.Mutex {
	mu, _ := o.netLocks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// WithObservability attaches metrics and a tracer to o and returns o, so a
// caller can chain it onto New(...) without changing New's signature (and
// without touching the construction call sites that build an Orchestrator
// with no observability at all, as in tests). Either argument may be nil;
// every recording method below tolerates a nil metrics/tracer.
func (o *Orchestrator) WithObservability(metrics *observability.Metrics, tracer trace.Tracer) *Orchestrator {
	o.metrics = metrics
	o.tracer = tracer
	return o
}

// startSpan starts a span named name under o's tracer, or hands back ctx
// and a no-op span via trace.SpanFromContext when no tracer is configured.
func (o *Orchestrator) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name)
}

func linkKindLabel(tag model.LinkKindTag) string {
	switch tag {
	case model.LinkL2:
		return "l2"
	case model.LinkELINE:
		return "eline"
	default:
		return "unknown"
	}
}

func interfaceKindLabel(tag model.InterfaceKindTag) string {
	switch tag {
	case model.KindBridge:
		return "bridge"
	case model.KindVXLAN:
		return "vxlan"
	case model.KindVETH:
		return "veth"
	case model.KindVLAN:
		return "vlan"
	default:
		return "unknown"
	}
}

func (o *Orchestrator) recordConstructed(linkKind model.LinkKindTag, outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.NetworksConstructedTotal.WithLabelValues(linkKindLabel(linkKind), outcome).Inc()
}

func (o *Orchestrator) recordTornDown(outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.NetworksTornDownTotal.WithLabelValues(outcome).Inc()
}

func (o *Orchestrator) recordError(err error) {
	if o.metrics == nil || err == nil {
		return
	}
	kind, ok := vnerr.KindOf(err)
	if !ok {
		kind = vnerr.HardFailure
	}
	o.metrics.ConstructionErrorsTotal.WithLabelValues(kind.String()).Inc()
}

func (o *Orchestrator) recordInterfaceCreated(kind model.InterfaceKindTag) {
	if o.metrics == nil {
		return
	}
	o.metrics.InterfacesCreatedTotal.WithLabelValues(interfaceKindLabel(kind)).Inc()
}

func (o *Orchestrator) recordInterfaceDeleted(kind model.InterfaceKindTag) {
	if o.metrics == nil {
		return
	}
	o.metrics.InterfacesDeletedTotal.WithLabelValues(interfaceKindLabel(kind)).Inc()
}

func (o *Orchestrator) addWorkersUp(delta float64) {
	if o.metrics == nil {
		return
	}
	o.metrics.NamespaceWorkersUp.Add(delta)
}

func (o *Orchestrator) setNATTables(delta float64) {
	if o.metrics == nil {
		return
	}
	o.metrics.NATTablesActive.Add(delta)
}

func (o *Orchestrator) observeConstructionDuration(linkKind model.LinkKindTag, seconds float64) {
	if o.metrics == nil {
		return
	}
	o.metrics.ConstructionDuration.WithLabelValues(linkKindLabel(linkKind)).Observe(seconds)
}
