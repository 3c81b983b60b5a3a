package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// DeleteVirtualNetwork tears a network down: deletes every contained
// interface, refuses while connection points remain bound, deletes the
// associated namespace (and its worker) if any, then removes the network
// from the catalog.
func (o *Orchestrator) DeleteVirtualNetwork(ctx context.Context, id uuid.UUID) (err error) {
	lock := o.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := o.startSpan(ctx, "orchestrator.delete_virtual_network")
	defer func() {
		o.recordError(err)
		if err != nil {
			o.recordTornDown("error")
		} else {
			o.recordTornDown("success")
		}
		span.End()
	}()

	network, ok := o.local.GetNetwork(id)
	if !ok {
		return vnerr.New(vnerr.NotFound, "virtual network")
	}
	if len(network.ConnectionPoints) > 0 {
		return vnerr.New(vnerr.NetworkingError, "network has active connection points")
	}

	for _, ifaceID := range network.Interfaces {
		// Deleting a VETH outside a namespace also removes its peer's
		// record, so a later entry in the list may already be gone.
		if _, ok := o.local.GetInterface(ifaceID); !ok {
			continue
		}
		if err := o.DeleteVirtualInterface(ctx, ifaceID); err != nil {
			return err
		}
	}

	if network.Internals != nil && network.Internals.DHCP != nil {
		_ = o.dhcp.Stop(toDHCPBinding(network.Internals.DHCP))
	}
	for _, table := range networkTableNames(network) {
		if err := o.nftables.CleanNAT(table); err == nil {
			o.setNATTables(-1)
		}
	}

	if network.Internals != nil && network.Internals.Namespace != nil {
		nsID := network.Internals.Namespace.NamespaceID
		if err := o.workers.Kill(nsID); err != nil {
			if kind, ok := vnerr.KindOf(err); !ok || kind != vnerr.NotFound {
				return err
			}
		}
		o.addWorkersUp(-1)
		o.local.RemoveNamespace(nsID)
	}

	o.local.RemoveNetwork(id)
	return nil
}
