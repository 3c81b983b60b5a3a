package orchestrator

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-fog05/fog05-net-linux/internal/agentclient"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
)

func TestCreateDefaultVirtualNetworkIdempotentOnRepeat(t *testing.T) {
	o, _, nft, _, d, _, _ := newTestOrchestrator()
	ctx := context.Background()

	first, err := o.CreateDefaultVirtualNetwork(ctx, true)
	require.NoError(t, err)
	require.Equal(t, model.NilID, first.ID)
	require.True(t, d.started)
	require.NotEmpty(t, nft.tableName)

	second, err := o.CreateDefaultVirtualNetwork(ctx, false)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestCreateDefaultVirtualNetworkRecordsFixedConstants(t *testing.T) {
	o, _, _, _, _, local, _ := newTestOrchestrator()
	network, err := o.CreateDefaultVirtualNetwork(context.Background(), false)
	require.NoError(t, err)

	require.Equal(t, model.LinkL2, network.LinkKind.Tag)
	require.Equal(t, DefaultVNI, network.LinkKind.MCast.VNI)
	require.Equal(t, DefaultGateway.String(), network.IPConfiguration.Gateway.String())

	stored, ok := local.GetNetwork(model.NilID)
	require.True(t, ok)
	require.Len(t, stored.Interfaces, 2)
}

func TestCreateVirtualNetworkNotFoundWhenGlobalCatalogLacksDesired(t *testing.T) {
	o, _, _, _, _, _, _ := newTestOrchestrator()
	_, err := o.CreateVirtualNetwork(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestCreateVirtualNetworkIdempotentOnRepeat(t *testing.T) {
	o, _, _, _, _, local, global := newTestOrchestrator()
	id := uuid.New()
	global.networks[id] = &model.VirtualNetwork{
		ID: id,
		LinkKind: model.LinkKind{
			Tag:   model.LinkL2,
			MCast: &model.MCastVXLANInfo{VNI: 100, MCastAddr: DefaultMCastGroup, Port: 4789},
		},
	}

	network, err := o.CreateVirtualNetwork(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, network.Interfaces, 5)

	ns, ok := local.GetNamespace(network.Internals.Namespace.NamespaceID)
	require.True(t, ok)
	require.Contains(t, ns.Name, "ns-")

	again, err := o.CreateVirtualNetwork(context.Background(), id)
	require.NoError(t, err)
	require.Same(t, network, again)
}

func TestDeleteVirtualNetworkNotFound(t *testing.T) {
	o, _, _, _, _, _, _ := newTestOrchestrator()
	err := o.DeleteVirtualNetwork(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestDeleteVirtualNetworkRefusesWithConnectionPoints(t *testing.T) {
	o, _, _, _, _, local, _ := newTestOrchestrator()
	id := uuid.New()
	require.NoError(t, local.PutNetwork(&model.VirtualNetwork{ID: id, ConnectionPoints: []uuid.UUID{uuid.New()}}))

	err := o.DeleteVirtualNetwork(context.Background(), id)
	require.Error(t, err)
}

func TestCreateVirtualInterfaceVethPeersAreReciprocal(t *testing.T) {
	o, _, _, _, _, _, _ := newTestOrchestrator()
	a, err := o.CreateVirtualInterface(context.Background(), model.InterfaceConfig{Kind: model.KindVETH})
	require.NoError(t, err)

	b, ok := o.local.GetInterface(a.Kind.VETH.Peer)
	require.True(t, ok)
	require.Equal(t, a.ID, b.Kind.VETH.Peer)
}

func TestCreateVirtualInterfaceUnimplementedKind(t *testing.T) {
	o, _, _, _, _, _, _ := newTestOrchestrator()
	_, err := o.CreateVirtualInterface(context.Background(), model.InterfaceConfig{Kind: model.KindMACVLAN})
	require.Error(t, err)
}

func TestDeleteVirtualInterfaceScavengesOrphanedVeth(t *testing.T) {
	o, _, _, sup, _, local, _ := newTestOrchestrator()
	ctx := context.Background()

	nsID := uuid.New()
	require.NoError(t, local.PutNamespace(&model.NetworkNamespace{ID: nsID, Name: "ns-abcdefgh"}))
	require.NoError(t, sup.Spawn(ctx, "ns-abcdefgh", nsID, "locator"))
	sup.delFails[nsID] = true

	peerID := uuid.New()
	ifaceID := uuid.New()
	require.NoError(t, local.PutInterface(&model.VirtualInterface{
		ID:        ifaceID,
		Name:      "vethint0",
		Namespace: &nsID,
		Kind:      model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: peerID, Internal: true}},
	}))
	// peerID is deliberately never put in the catalog: its record is
	// already gone, simulating a half-torn-down pair (scenario B3).

	err := o.DeleteVirtualInterface(ctx, ifaceID)
	require.NoError(t, err)

	_, stillThere := local.GetInterface(ifaceID)
	require.False(t, stillThere)
}

func TestShutdownTearsDownDefaultAndConstructedNetworks(t *testing.T) {
	o, _, _, _, _, _, global := newTestOrchestrator()
	ctx := context.Background()

	_, err := o.CreateDefaultVirtualNetwork(ctx, true)
	require.NoError(t, err)

	id := uuid.New()
	global.networks[id] = &model.VirtualNetwork{
		ID: id,
		LinkKind: model.LinkKind{
			Tag:   model.LinkL2,
			MCast: &model.MCastVXLANInfo{VNI: 100, MCastAddr: DefaultMCastGroup, Port: 4789},
		},
	}
	_, err = o.CreateVirtualNetwork(ctx, id)
	require.NoError(t, err)

	require.NoError(t, o.Shutdown(ctx, agentclient.Noop{}))

	_, defaultStillThere := o.local.GetNetwork(model.NilID)
	require.False(t, defaultStillThere)
	_, otherStillThere := o.local.GetNetwork(id)
	require.False(t, otherStillThere)
}

func TestDeleteVirtualInterfacePropagatesWorkerErrorWhenPeerStillPresent(t *testing.T) {
	o, _, _, sup, _, local, _ := newTestOrchestrator()
	ctx := context.Background()

	nsID := uuid.New()
	require.NoError(t, local.PutNamespace(&model.NetworkNamespace{ID: nsID, Name: "ns-abcdefgh"}))
	require.NoError(t, sup.Spawn(ctx, "ns-abcdefgh", nsID, "locator"))
	sup.delFails[nsID] = true

	peerID := uuid.New()
	ifaceID := uuid.New()
	require.NoError(t, local.PutInterface(&model.VirtualInterface{
		ID:   peerID,
		Name: "vethext0",
	}))
	require.NoError(t, local.PutInterface(&model.VirtualInterface{
		ID:        ifaceID,
		Name:      "vethint0",
		Namespace: &nsID,
		Kind:      model.InterfaceKind{Tag: model.KindVETH, VETH: &model.VETHKind{Peer: peerID, Internal: true}},
	}))

	err := o.DeleteVirtualInterface(ctx, ifaceID)
	require.Error(t, err)

	_, stillThere := local.GetInterface(ifaceID)
	require.True(t, stillThere)
}
