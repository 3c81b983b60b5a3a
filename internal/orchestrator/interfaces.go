package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/idgen"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// CreateVirtualInterface realizes config outside any namespace. VXLAN,
// BRIDGE, VETH and VLAN are supported; MACVLAN/GRE/GRETAP/IP6GRE/
// IP6GRETAP reserve catalog shape but return Unimplemented.
func (o *Orchestrator) CreateVirtualInterface(ctx context.Context, config model.InterfaceConfig) (*model.VirtualInterface, error) {
	name := config.Name
	if name == "" {
		name = o.uniqueLinkName()
	} else if o.netlink.LinkExists(name) {
		return nil, vnerr.New(vnerr.AlreadyPresent, "interface name already in use")
	}

	switch config.Kind {
	case model.KindVXLAN:
		if err := o.netlink.CreateMcastVXLAN(ctx, name, o.cfg.OverlayInterface, config.VNI, config.MCastAddr, config.Port); err != nil {
			return nil, err
		}
		iface := &model.VirtualInterface{
			ID:   uuid.New(),
			Name: name,
			Kind: model.InterfaceKind{Tag: model.KindVXLAN, VXLAN: &model.VXLANKind{
				VNI: config.VNI, MCastAddr: config.MCastAddr, Port: config.Port, ParentDev: o.cfg.OverlayInterface,
			}},
		}
		if err := o.local.PutInterface(iface); err != nil {
			return nil, err
		}
		o.recordInterfaceCreated(model.KindVXLAN)
		return iface, nil

	case model.KindBridge:
		if err := o.netlink.CreateBridge(ctx, name); err != nil {
			return nil, err
		}
		iface := &model.VirtualInterface{
			ID:   uuid.New(),
			Name: name,
			Kind: model.InterfaceKind{Tag: model.KindBridge, Bridge: &model.BridgeKind{Children: map[uuid.UUID]struct{}{}}},
		}
		if err := o.local.PutInterface(iface); err != nil {
			return nil, err
		}
		o.recordInterfaceCreated(model.KindBridge)
		return iface, nil

	case model.KindVETH:
		peerName := o.uniqueLinkName()
		if err := o.netlink.CreateVeth(ctx, name, peerName); err != nil {
			return nil, err
		}
		aID, bID := uuid.New(), uuid.New()
		a := &model.VirtualInterface{ID: aID, Name: name, Kind: model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: bID}}}
		b := &model.VirtualInterface{ID: bID, Name: peerName, Kind: model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: aID}}}
		if err := o.local.PutInterface(a); err != nil {
			return nil, err
		}
		if err := o.local.PutInterface(b); err != nil {
			return nil, err
		}
		o.recordInterfaceCreated(model.KindVETH)
		return a, nil

	case model.KindVLAN:
		if err := o.netlink.CreateVLAN(ctx, name, config.ParentDev, config.VLANTag); err != nil {
			return nil, err
		}
		iface := &model.VirtualInterface{
			ID:   uuid.New(),
			Name: name,
			Kind: model.InterfaceKind{Tag: model.KindVLAN, VLAN: &model.VLANKind{Tag: config.VLANTag, ParentDev: config.ParentDev}},
		}
		if err := o.local.PutInterface(iface); err != nil {
			return nil, err
		}
		o.recordInterfaceCreated(model.KindVLAN)
		return iface, nil

	default:
		return nil, vnerr.New(vnerr.Unimplemented, "interface kind not implemented")
	}
}

// CreateVirtualInterfaceInNamespace realizes config inside namespace nsID.
// Only VETH is currently realized, delegated to the namespace worker.
func (o *Orchestrator) CreateVirtualInterfaceInNamespace(ctx context.Context, config model.InterfaceConfig, nsID uuid.UUID) (*model.VirtualInterface, error) {
	if config.Kind != model.KindVETH {
		return nil, vnerr.New(vnerr.Unimplemented, "only VETH is realized inside a namespace")
	}
	client, err := o.workers.Get(nsID)
	if err != nil {
		return nil, err
	}
	name := config.Name
	if name == "" {
		name = idgen.InterfaceName()
	}
	peerName := idgen.InterfaceName()
	if err := client.AddVirtualInterfaceVeth(ctx, name, peerName); err != nil {
		return nil, err
	}
	aID, bID := uuid.New(), uuid.New()
	a := &model.VirtualInterface{ID: aID, Name: name, Kind: model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: bID, Internal: true}}}
	b := &model.VirtualInterface{ID: bID, Name: peerName, Kind: model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: aID, Internal: true}}}
	if err := o.local.PutInterface(a); err != nil {
		return nil, err
	}
	if err := o.local.PutInterface(b); err != nil {
		return nil, err
	}
	if err := o.local.AddToNamespace(nsID, aID); err != nil {
		return nil, err
	}
	if err := o.local.AddToNamespace(nsID, bID); err != nil {
		return nil, err
	}
	o.recordInterfaceCreated(model.KindVETH)
	return a, nil
}

// DeleteVirtualInterface removes interface id, deleting its kernel
// object(s). An in-namespace deletion is delegated to the owning
// namespace's worker; a worker error is tolerated when the interface is a
// VETH whose peer has already vanished from the catalog (scavenging a
// half-torn-down pair, per spec §4.5/B3).
func (o *Orchestrator) DeleteVirtualInterface(ctx context.Context, id uuid.UUID) error {
	iface, ok := o.local.GetInterface(id)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}

	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if delErr := client.DelVirtualInterface(ctx, iface.Name); delErr != nil {
			if !isVethScavengeable(o, iface) {
				return delErr
			}
		}
		_ = o.local.RemoveFromNamespace(*iface.Namespace, id)
	} else {
		if iface.Kind.Tag == model.KindVETH && iface.Kind.VETH != nil {
			if peer, ok := o.local.GetInterface(iface.Kind.VETH.Peer); ok {
				_ = o.netlink.DeleteInterface(ctx, peer.Name) // deleting either end removes the pair
				o.local.RemoveInterface(peer.ID)
			}
		}
		if err := o.netlink.DeleteInterface(ctx, iface.Name); err != nil {
			if kind, ok := vnerr.KindOf(err); !ok || kind != vnerr.NotFound {
				return err
			}
		}
		if iface.Parent != nil {
			_ = o.local.DetachChild(*iface.Parent, id)
		}
	}

	o.local.RemoveInterface(id)
	o.recordInterfaceDeleted(iface.Kind.Tag)
	return nil
}

func isVethScavengeable(o *Orchestrator, iface *model.VirtualInterface) bool {
	if iface.Kind.Tag != model.KindVETH || iface.Kind.VETH == nil {
		return false
	}
	_, peerExists := o.local.GetInterface(iface.Kind.VETH.Peer)
	return !peerExists
}
