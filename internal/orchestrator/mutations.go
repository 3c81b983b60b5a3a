package orchestrator

import (
	"context"
	"net"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// AttachToBridge attaches ifaceID to bridgeID as a member, via the direct
// driver or the owning namespace's worker depending on ifaceID's
// namespace, preserving invariant I3 on both catalog records.
func (o *Orchestrator) AttachToBridge(ctx context.Context, ifaceID, bridgeID uuid.UUID) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	bridge, ok := o.local.GetInterface(bridgeID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "bridge interface")
	}
	if bridge.Kind.Tag != model.KindBridge || bridge.Kind.Bridge == nil {
		return vnerr.New(vnerr.WrongKind, "target is not a bridge")
	}

	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.SetVirtualInterfaceMaster(ctx, iface.Name, bridge.Name); err != nil {
			return err
		}
	} else if err := o.netlink.SetMaster(ctx, iface.Name, bridge.Name); err != nil {
		return err
	}

	return o.local.AttachChild(bridgeID, ifaceID)
}

// DetachFromBridge removes ifaceID from its parent bridge's children set.
func (o *Orchestrator) DetachFromBridge(ctx context.Context, ifaceID uuid.UUID) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Parent == nil {
		return vnerr.New(vnerr.NotConnected, "interface has no parent bridge")
	}
	parentID := *iface.Parent

	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.SetVirtualInterfaceNoMaster(ctx, iface.Name); err != nil {
			return err
		}
	} else if err := o.netlink.ClearMaster(ctx, iface.Name); err != nil {
		return err
	}

	return o.local.DetachChild(parentID, ifaceID)
}

// Rename renames ifaceID's kernel object and catalog record.
func (o *Orchestrator) Rename(ctx context.Context, ifaceID uuid.UUID, newName string) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.SetVirtualInterfaceName(ctx, iface.Name, newName); err != nil {
			return err
		}
	} else if err := o.netlink.Rename(ctx, iface.Name, newName); err != nil {
		return err
	}
	iface.Name = newName
	return o.local.PutInterface(iface)
}

// SetMAC sets ifaceID's hardware address.
func (o *Orchestrator) SetMAC(ctx context.Context, ifaceID uuid.UUID, mac net.HardwareAddr) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.SetVirtualInterfaceMAC(ctx, iface.Name, mac); err != nil {
			return err
		}
	} else if err := o.netlink.SetMAC(ctx, iface.Name, mac); err != nil {
		return err
	}
	iface.MAC = mac
	return o.local.PutInterface(iface)
}

// AddAddress adds ip/prefix to ifaceID.
func (o *Orchestrator) AddAddress(ctx context.Context, ifaceID uuid.UUID, ip net.IP, prefix int) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.SetVirtualInterfaceAddress(ctx, iface.Name, ip, prefix); err != nil {
			return err
		}
	} else if err := o.netlink.AddAddress(ctx, iface.Name, ip, prefix); err != nil {
		return err
	}
	bits := 32
	if ip.To4() == nil {
		bits = 128
	}
	iface.Addresses = append(iface.Addresses, net.IPNet{IP: ip, Mask: net.CIDRMask(prefix, bits)})
	return o.local.PutInterface(iface)
}

// DelAddress removes ip from ifaceID.
func (o *Orchestrator) DelAddress(ctx context.Context, ifaceID uuid.UUID, ip net.IP) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace != nil {
		client, err := o.workers.Get(*iface.Namespace)
		if err != nil {
			return err
		}
		if err := client.DelVirtualInterfaceAddress(ctx, iface.Name, ip); err != nil {
			return err
		}
	} else if err := o.netlink.DelAddress(ctx, iface.Name, ip); err != nil {
		return err
	}
	kept := iface.Addresses[:0]
	for _, a := range iface.Addresses {
		if !a.IP.Equal(ip) {
			kept = append(kept, a)
		}
	}
	iface.Addresses = kept
	return o.local.PutInterface(iface)
}

// MoveToNamespace moves ifaceID, currently outside any namespace, into
// nsID, preserving invariant I4.
func (o *Orchestrator) MoveToNamespace(ctx context.Context, ifaceID, nsID uuid.UUID) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace != nil {
		return vnerr.New(vnerr.AlreadyPresent, "interface already in a namespace")
	}
	ns, ok := o.local.GetNamespace(nsID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "namespace")
	}
	if err := o.netlink.MoveToNamespace(ctx, iface.Name, ns.Name); err != nil {
		return err
	}
	return o.local.AddToNamespace(nsID, ifaceID)
}

// MoveToDefaultNamespace moves ifaceID out of its owning namespace back to
// the host's default namespace, via the worker operation of the same
// name.
func (o *Orchestrator) MoveToDefaultNamespace(ctx context.Context, ifaceID uuid.UUID) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace == nil {
		return vnerr.New(vnerr.NotConnected, "interface has no owning namespace")
	}
	nsID := *iface.Namespace
	client, err := o.workers.Get(nsID)
	if err != nil {
		return err
	}
	if err := client.MoveVirtualInterfaceIntoDefaultNS(ctx, iface.Name); err != nil {
		return err
	}
	return o.local.RemoveFromNamespace(nsID, ifaceID)
}

// SetDefaultRoute sets the default route inside the namespace owning
// ifaceID to gateway.
func (o *Orchestrator) SetDefaultRoute(ctx context.Context, ifaceID uuid.UUID, gateway net.IP) error {
	iface, ok := o.local.GetInterface(ifaceID)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual interface")
	}
	if iface.Namespace == nil {
		return vnerr.New(vnerr.NotConnected, "interface has no owning namespace")
	}
	client, err := o.workers.Get(*iface.Namespace)
	if err != nil {
		return err
	}
	return client.SetDefaultRoute(ctx, gateway)
}
