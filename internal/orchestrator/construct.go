package orchestrator

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/idgen"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// constructNames are the six random names a VXLAN construct generates up
// front, before any kernel mutation, per the supplement recovered from
// original_source's mcast_vxlan_create/ptp_vxlan_create.
type constructNames struct {
	outerBridge string
	vxlan       string
	innerBridge string
	innerVeth   string
	outerVeth   string
	namespace   string
}

// newConstructNames picks the six random names a construct uses, skipping
// any that collide with a link already present on the host (idgen names
// are short enough that a collision, while rare, is not impossible).
func (o *Orchestrator) newConstructNames() constructNames {
	return constructNames{
		outerBridge: o.uniqueLinkName(),
		vxlan:       o.uniqueLinkName(),
		innerBridge: o.uniqueLinkName(),
		innerVeth:   o.uniqueLinkName(),
		outerVeth:   o.uniqueLinkName(),
		namespace:   idgen.NamespaceName(),
	}
}

// uniqueLinkName retries idgen.InterfaceName against the host's current
// link set, bounded so a pathological driver can't spin forever.
func (o *Orchestrator) uniqueLinkName() string {
	name := idgen.InterfaceName()
	for i := 0; i < 10 && o.netlink.LinkExists(name); i++ {
		name = idgen.InterfaceName()
	}
	return name
}

// compensation is a stack of rollback closures, run in reverse on a later
// step's failure (spec §9, option (a): "prepend a compensation log to
// each step and unwind on failure").
type compensation struct {
	steps []func()
}

func (c *compensation) push(undo func()) {
	c.steps = append(c.steps, undo)
}

func (c *compensation) unwind() {
	for i := len(c.steps) - 1; i >= 0; i-- {
		c.steps[i]()
	}
}

// CreateVirtualNetwork realizes the virtual network identified by id.
// Idempotent: if the local catalog already has it, it is returned as-is.
// Otherwise the global catalog supplies the desired parameters and
// construction dispatches on link_kind.
func (o *Orchestrator) CreateVirtualNetwork(ctx context.Context, id uuid.UUID) (*model.VirtualNetwork, error) {
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if existing, ok := o.local.GetNetwork(id); ok {
		return existing, nil
	}

	desired, ok := o.global.DesiredNetwork(id)
	if !ok {
		return nil, vnerr.New(vnerr.NotFound, "desired network in global catalog")
	}

	switch desired.LinkKind.Tag {
	case model.LinkL2:
		return o.mcastConstruct(ctx, desired)
	case model.LinkELINE:
		return o.ptpConstruct(ctx, desired)
	default:
		return nil, vnerr.New(vnerr.Unimplemented, "unsupported link kind")
	}
}

func (o *Orchestrator) mcastConstruct(ctx context.Context, desired *model.VirtualNetwork) (*model.VirtualNetwork, error) {
	info := desired.LinkKind.MCast
	if info == nil {
		return nil, vnerr.New(vnerr.EncodingError, "L2 network missing multicast VXLAN parameters")
	}
	return o.vxlanConstruct(ctx, model.LinkL2, desired, func(names constructNames, c *compensation) (*model.VXLANKind, error) {
		if err := o.netlink.CreateMcastVXLAN(ctx, names.vxlan, o.cfg.OverlayInterface, info.VNI, info.MCastAddr, info.Port); err != nil {
			return nil, err
		}
		c.push(func() { _ = o.netlink.DeleteInterface(context.Background(), names.vxlan) })
		return &model.VXLANKind{VNI: info.VNI, MCastAddr: info.MCastAddr, Port: info.Port, ParentDev: o.cfg.OverlayInterface}, nil
	})
}

func (o *Orchestrator) ptpConstruct(ctx context.Context, desired *model.VirtualNetwork) (*model.VirtualNetwork, error) {
	info := desired.LinkKind.PTP
	if info == nil {
		return nil, vnerr.New(vnerr.EncodingError, "ELINE network missing point-to-point VXLAN parameters")
	}
	return o.vxlanConstruct(ctx, model.LinkELINE, desired, func(names constructNames, c *compensation) (*model.VXLANKind, error) {
		local := net.IPv4zero
		if err := o.netlink.CreatePtpVXLAN(ctx, names.vxlan, o.cfg.OverlayInterface, info.VNI, local, info.RemoteAddr, info.Port); err != nil {
			return nil, err
		}
		c.push(func() { _ = o.netlink.DeleteInterface(context.Background(), names.vxlan) })
		return &model.VXLANKind{VNI: info.VNI, RemoteAddr: info.RemoteAddr, Port: info.Port, ParentDev: o.cfg.OverlayInterface}, nil
	})
}

// vxlanConstruct runs the s1-s5 template shared by mcast and point-to-point
// construction; createVXLAN performs the kind-specific step s2 overlay
// link creation and returns the catalog kind to store.
func (o *Orchestrator) vxlanConstruct(
	ctx context.Context,
	linkKind model.LinkKindTag,
	desired *model.VirtualNetwork,
	createVXLAN func(names constructNames, c *compensation) (*model.VXLANKind, error),
) (network *model.VirtualNetwork, err error) {
	ctx, span := o.startSpan(ctx, "orchestrator.construct_network")
	started := time.Now()
	defer func() {
		o.recordError(err)
		if err != nil {
			o.recordConstructed(linkKind, "error")
		} else {
			o.recordConstructed(linkKind, "success")
			o.observeConstructionDuration(linkKind, time.Since(started).Seconds())
		}
		span.End()
	}()

	names := o.newConstructNames()
	var c compensation
	ok := false
	defer func() {
		if !ok {
			c.unwind()
		}
	}()

	// s1: outer bridge.
	if err := o.netlink.CreateBridge(ctx, names.outerBridge); err != nil {
		return nil, err
	}
	c.push(func() { _ = o.netlink.DeleteInterface(context.Background(), names.outerBridge) })
	if err := o.netlink.SetUp(ctx, names.outerBridge); err != nil {
		return nil, err
	}

	// s2: overlay link, attached to outer bridge.
	vxlanKind, err := createVXLAN(names, &c)
	if err != nil {
		return nil, err
	}
	if err := o.netlink.SetMaster(ctx, names.vxlan, names.outerBridge); err != nil {
		return nil, err
	}
	if err := o.netlink.SetUp(ctx, names.vxlan); err != nil {
		return nil, err
	}

	// s3: namespace + worker.
	nsID := uuid.New()
	locator := o.locatorFor(nsID)
	if err := o.workers.Spawn(ctx, names.namespace, nsID, locator); err != nil {
		return nil, err
	}
	o.addWorkersUp(1)
	c.push(func() { _ = o.workers.Kill(nsID); o.addWorkersUp(-1) })

	// s4: veth pair, external end on outer bridge, internal end moved in.
	if err := o.netlink.CreateVeth(ctx, names.outerVeth, names.innerVeth); err != nil {
		return nil, err
	}
	c.push(func() { _ = o.netlink.DeleteInterface(context.Background(), names.outerVeth) })
	if err := o.netlink.SetMaster(ctx, names.outerVeth, names.outerBridge); err != nil {
		return nil, err
	}
	if err := o.netlink.SetUp(ctx, names.outerVeth); err != nil {
		return nil, err
	}
	if err := o.netlink.MoveToNamespace(ctx, names.innerVeth, names.namespace); err != nil {
		return nil, err
	}

	// s5: wait for the worker to come up, then bring lo up, build the
	// inner bridge, attach.
	if err := o.workers.WaitReady(ctx, nsID); err != nil {
		return nil, err
	}
	client, err := o.workers.Get(nsID)
	if err != nil {
		return nil, err
	}
	if err := client.SetVirtualInterfaceUp(ctx, "lo"); err != nil {
		return nil, err
	}
	if err := client.AddVirtualInterfaceBridge(ctx, names.innerBridge); err != nil {
		return nil, err
	}
	if err := client.SetVirtualInterfaceUp(ctx, names.innerBridge); err != nil {
		return nil, err
	}
	if err := client.SetVirtualInterfaceMaster(ctx, names.innerVeth, names.innerBridge); err != nil {
		return nil, err
	}
	if err := client.SetVirtualInterfaceUp(ctx, names.innerVeth); err != nil {
		return nil, err
	}

	network, err = o.recordConstructedNetwork(desired, names, nsID, vxlanKind)
	if err != nil {
		return nil, err
	}
	ok = true
	return network, nil
}

func (o *Orchestrator) locatorFor(nsID uuid.UUID) string {
	if o.cfg.LocatorFunc != nil {
		return o.cfg.LocatorFunc(nsID)
	}
	return "unix:///run/fog05-net-linux/" + nsID.String() + ".sock"
}

func (o *Orchestrator) recordConstructedNetwork(desired *model.VirtualNetwork, names constructNames, nsID uuid.UUID, vxlanKind *model.VXLANKind) (*model.VirtualNetwork, error) {
	outerBridgeID := uuid.New()
	vxlanID := uuid.New()
	outerVethID := uuid.New()
	innerVethID := uuid.New()
	innerBridgeID := uuid.New()

	if err := o.local.PutNamespace(&model.NetworkNamespace{ID: nsID, Name: names.namespace, Interfaces: []uuid.UUID{innerVethID, innerBridgeID}}); err != nil {
		return nil, err
	}

	outerBridge := &model.VirtualInterface{
		ID:   outerBridgeID,
		Name: names.outerBridge,
		Kind: model.InterfaceKind{Tag: model.KindBridge, Bridge: &model.BridgeKind{Children: map[uuid.UUID]struct{}{vxlanID: {}, outerVethID: {}}}},
	}
	vxlan := &model.VirtualInterface{
		ID:     vxlanID,
		Name:   names.vxlan,
		Parent: &outerBridgeID,
		Kind:   model.InterfaceKind{Tag: model.KindVXLAN, VXLAN: vxlanKind},
	}
	outerVeth := &model.VirtualInterface{
		ID:     outerVethID,
		Name:   names.outerVeth,
		Parent: &outerBridgeID,
		Kind:   model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: innerVethID, Internal: false}},
	}
	innerVeth := &model.VirtualInterface{
		ID:        innerVethID,
		Name:      names.innerVeth,
		Namespace: &nsID,
		Parent:    &innerBridgeID,
		Kind:      model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: outerVethID, Internal: true}},
	}
	innerBridge := &model.VirtualInterface{
		ID:        innerBridgeID,
		Name:      names.innerBridge,
		Namespace: &nsID,
		Kind:      model.InterfaceKind{Tag: model.KindBridge, Bridge: &model.BridgeKind{Children: map[uuid.UUID]struct{}{innerVethID: {}}}},
	}

	for _, iface := range []*model.VirtualInterface{outerBridge, vxlan, outerVeth, innerVeth, innerBridge} {
		if err := o.local.PutInterface(iface); err != nil {
			return nil, err
		}
	}

	network := &model.VirtualNetwork{
		ID:              desired.ID,
		Name:            desired.Name,
		IsManagement:    desired.IsManagement,
		LinkKind:        desired.LinkKind,
		IPVersion:       desired.IPVersion,
		IPConfiguration: desired.IPConfiguration,
		Interfaces:      []uuid.UUID{outerBridgeID, vxlanID, outerVethID, innerVethID, innerBridgeID},
		Internals: &model.PluginInternals{
			Namespace: &model.NamespaceBinding{NamespaceID: nsID, Name: names.namespace},
		},
	}
	if err := o.local.PutNetwork(network); err != nil {
		return nil, err
	}
	return network, nil
}
