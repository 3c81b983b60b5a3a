package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
)

// Fixed default-network constants, per spec.md §6.
var (
	DefaultBridgeName = "fosbr0"
	DefaultVXLANName  = "fosvxl0"
	DefaultVNI        = uint32(3845)
	DefaultMCastGroup = net.ParseIP("239.15.5.0")
	DefaultPort       = uint16(3845)
	DefaultSubnet     = mustParseCIDR("10.240.0.0/16")
	DefaultGateway    = net.ParseIP("10.240.0.1")
	DefaultDHCPFrom   = net.ParseIP("10.240.0.2")
	DefaultDHCPTo     = net.ParseIP("10.240.255.254")
	DefaultDNS        = net.ParseIP("208.67.222.222")
)

func mustParseCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

// CreateDefaultVirtualNetwork realizes the node's fixed-identity default
// network: bridge "fosbr0", multicast VXLAN "fosvxl0", optional DHCP, and
// NAT out the overlay interface. Per invariant I6, at most one network
// with id = nil exists: calling this again while the default network is in
// the local catalog returns the existing record unchanged, whatever
// dhcpFlag says, and touches no kernel state.
func (o *Orchestrator) CreateDefaultVirtualNetwork(ctx context.Context, dhcpFlag bool) (_ *model.VirtualNetwork, err error) {
	lock := o.lockFor(model.NilID)
	lock.Lock()
	defer lock.Unlock()

	if existing, ok := o.local.GetNetwork(model.NilID); ok {
		return existing, nil
	}

	ctx, span := o.startSpan(ctx, "orchestrator.create_default_network")
	defer func() {
		o.recordError(err)
		if err != nil {
			o.recordConstructed(model.LinkL2, "error")
		} else {
			o.recordConstructed(model.LinkL2, "success")
		}
		span.End()
	}()

	// s1: outer bridge.
	if err := o.netlink.CreateBridge(ctx, DefaultBridgeName); err != nil {
		return nil, err
	}
	if err := o.netlink.SetUp(ctx, DefaultBridgeName); err != nil {
		return nil, err
	}

	// s2: multicast VXLAN attached to the bridge.
	if err := o.netlink.CreateMcastVXLAN(ctx, DefaultVXLANName, o.cfg.OverlayInterface, DefaultVNI, DefaultMCastGroup, DefaultPort); err != nil {
		return nil, err
	}
	if err := o.netlink.SetMaster(ctx, DefaultVXLANName, DefaultBridgeName); err != nil {
		return nil, err
	}
	if err := o.netlink.SetUp(ctx, DefaultVXLANName); err != nil {
		return nil, err
	}

	// s3: gateway address on the bridge.
	prefixLen, _ := DefaultSubnet.Mask.Size()
	if err := o.netlink.AddAddress(ctx, DefaultBridgeName, DefaultGateway, prefixLen); err != nil {
		return nil, err
	}

	internals := &model.PluginInternals{}

	// s4: DHCP, if requested.
	if dhcpFlag {
		binding := dhcp.Binding{
			ConfPath:   o.cfg.RunPath + "/fosbr0.conf",
			PIDPath:    o.cfg.RunPath + "/fosbr0.pid",
			LeasesPath: o.cfg.RunPath + "/fosbr0.leases",
			LogPath:    o.cfg.RunPath + "/fosbr0.log",
		}
		params := dhcp.Params{
			Interface:  DefaultBridgeName,
			RangeStart: DefaultDHCPFrom,
			RangeEnd:   DefaultDHCPTo,
			Gateway:    DefaultGateway,
			DNS:        []net.IP{DefaultDNS},
		}
		if err := o.dhcp.Start(binding, params); err != nil {
			return nil, err
		}
		internals.DHCP = &model.DHCPBinding{
			ConfPath:   binding.ConfPath,
			PIDPath:    binding.PIDPath,
			LeasesPath: binding.LeasesPath,
			LogPath:    binding.LogPath,
		}
	}

	// s5: NAT out the overlay interface.
	tableName, err := o.nftables.ConfigureNAT(DefaultSubnet, o.cfg.OverlayInterface)
	if err != nil {
		return nil, err
	}
	o.setNATTables(1)
	internals.NFTableNames = []string{tableName}

	bridgeID := uuid.New()
	vxlanID := uuid.New()

	bridgeIface := &model.VirtualInterface{
		ID:   bridgeID,
		Name: DefaultBridgeName,
		Kind: model.InterfaceKind{Tag: model.KindBridge, Bridge: &model.BridgeKind{Children: map[uuid.UUID]struct{}{vxlanID: {}}}},
	}
	vxlanIface := &model.VirtualInterface{
		ID:     vxlanID,
		Name:   DefaultVXLANName,
		Parent: &bridgeID,
		Kind: model.InterfaceKind{Tag: model.KindVXLAN, VXLAN: &model.VXLANKind{
			VNI:       DefaultVNI,
			MCastAddr: DefaultMCastGroup,
			Port:      DefaultPort,
			ParentDev: o.cfg.OverlayInterface,
		}},
	}

	if err := o.local.PutInterface(bridgeIface); err != nil {
		return nil, err
	}
	if err := o.local.PutInterface(vxlanIface); err != nil {
		return nil, err
	}

	network := &model.VirtualNetwork{
		ID:           model.NilID,
		Name:         model.DefaultNetworkLabel,
		IsManagement: false,
		LinkKind: model.LinkKind{
			Tag:   model.LinkL2,
			MCast: &model.MCastVXLANInfo{VNI: DefaultVNI, MCastAddr: DefaultMCastGroup, Port: DefaultPort},
		},
		IPVersion: model.IPv4,
		IPConfiguration: &model.IPConfiguration{
			Subnet:        DefaultSubnet,
			Gateway:       DefaultGateway,
			DHCPRangeFrom: DefaultDHCPFrom,
			DHCPRangeTo:   DefaultDHCPTo,
			DNS:           []net.IP{DefaultDNS},
		},
		Interfaces: []uuid.UUID{bridgeID, vxlanID},
		Internals:  internals,
	}
	if err := o.local.PutNetwork(network); err != nil {
		return nil, err
	}

	o.logger.Info("created default virtual network",
		slog.String("bridge", DefaultBridgeName),
		slog.Bool("dhcp", dhcpFlag),
		slog.String("nat_table", tableName),
	)
	return network, nil
}

// identifier returns a short human label for log lines that need to name a
// network without printing its full internals.
func identifier(id uuid.UUID) string {
	return fmt.Sprintf("network %s", id)
}
