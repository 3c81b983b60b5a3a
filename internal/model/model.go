// Package model defines the logical objects the fog05 Linux networking
// plugin composes: virtual networks, virtual interfaces and network
// namespaces, plus the opaque internals a VirtualNetwork carries between
// construction and teardown.
package model

import (
	"net"
	"time"

	"github.com/google/uuid"
)

// NilID is the UUID reserved for the node's default virtual network.
var NilID = uuid.Nil

// DefaultNetworkName is the catalog id string the original fog05 plugin
// gives the default network.
const DefaultNetworkName = "fos-default"

// DefaultNetworkLabel is the default network's display name.
const DefaultNetworkLabel = "Eclipse fog05 default virtual network"

// IPVersion identifies the address family a VirtualNetwork operates over.
type IPVersion int

const (
	IPv4 IPVersion = iota
	IPv6
)

// LinkKindTag tags the variant carried by LinkKind.
type LinkKindTag int

const (
	LinkL2 LinkKindTag = iota
	LinkELINE
	LinkUnsupported
)

// MCastVXLANInfo parameterizes a multicast-mode VXLAN overlay (L2 link kind).
type MCastVXLANInfo struct {
	VNI       uint32
	MCastAddr net.IP
	Port      uint16
}

// PTPVXLANInfo parameterizes a point-to-point VXLAN overlay (ELINE link kind).
type PTPVXLANInfo struct {
	VNI        uint32
	RemoteAddr net.IP
	Port       uint16
}

// LinkKind is a tagged union over the link_kind field of VirtualNetwork.
type LinkKind struct {
	Tag   LinkKindTag
	MCast *MCastVXLANInfo
	PTP   *PTPVXLANInfo
}

// IPConfiguration carries the subnet/gateway/DHCP/DNS parameters of a
// VirtualNetwork that wants external connectivity.
type IPConfiguration struct {
	Subnet        *net.IPNet
	Gateway       net.IP
	DHCPRangeFrom net.IP
	DHCPRangeTo   net.IP
	DNS           []net.IP
}

// NamespaceBinding records which kernel namespace, if any, realizes a
// VirtualNetwork's inner topology.
type NamespaceBinding struct {
	NamespaceID uuid.UUID
	Name        string
}

// DHCPBinding records the filesystem artifacts of a running dnsmasq
// instance serving a VirtualNetwork.
type DHCPBinding struct {
	ConfPath   string
	PIDPath    string
	LeasesPath string
	LogPath    string
}

// PluginInternals is the opaque blob referenced by
// VirtualNetwork.PluginInternals. It round-trips through JSON so it can be
// stored verbatim by the catalog collaborator (property P5).
type PluginInternals struct {
	Namespace    *NamespaceBinding `json:"namespace,omitempty"`
	DHCP         *DHCPBinding      `json:"dhcp,omitempty"`
	NFTableNames []string          `json:"nftables,omitempty"`
}

// VirtualNetwork is the top-level logical object the orchestrator composes
// and tears down.
type VirtualNetwork struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	IsManagement     bool             `json:"is_management"`
	LinkKind         LinkKind         `json:"link_kind"`
	IPVersion        IPVersion        `json:"ip_version"`
	IPConfiguration  *IPConfiguration `json:"ip_configuration,omitempty"`
	Interfaces       []uuid.UUID      `json:"interfaces,omitempty"`
	ConnectionPoints []uuid.UUID      `json:"connection_points,omitempty"`
	Internals        *PluginInternals `json:"internals,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// EnsureInternals returns the network's internals blob, allocating one on
// first use so callers can mutate it in place.
func (v *VirtualNetwork) EnsureInternals() *PluginInternals {
	if v.Internals == nil {
		v.Internals = &PluginInternals{}
	}
	return v.Internals
}

// InterfaceKindTag tags the variant carried by InterfaceKind.
type InterfaceKindTag int

const (
	KindBridge InterfaceKindTag = iota
	KindVXLAN
	KindVETH
	KindVLAN
	KindMACVLAN
	KindGRE
	KindGRETAP
	KindIP6GRE
	KindIP6GRETAP
)

// BridgeKind carries a bridge's member-interface set.
type BridgeKind struct {
	Children map[uuid.UUID]struct{}
}

// VXLANKind carries a VXLAN interface's overlay parameters. Exactly one of
// MCastAddr / RemoteAddr is populated depending on overlay mode.
type VXLANKind struct {
	VNI        uint32
	MCastAddr  net.IP
	RemoteAddr net.IP
	LocalAddr  net.IP
	Port       uint16
	ParentDev  string
}

// VETHKind carries a veth endpoint's pairing information.
type VETHKind struct {
	Peer     uuid.UUID
	Internal bool
}

// VLANKind carries an 802.1Q sub-interface's tag and parent.
type VLANKind struct {
	Tag       uint16
	ParentDev string
}

// MACVLANKind, GREKind and friends reserve catalog shape for the
// Unimplemented surface of §4.5 (create_virtual_interface dispatch).
type MACVLANKind struct{ ParentDev string }
type GREKind struct {
	Local, Remote net.IP
}
type GRETAPKind struct {
	Local, Remote net.IP
}
type IP6GREKind struct {
	Local, Remote net.IP
}
type IP6GRETAPKind struct {
	Local, Remote net.IP
}

// InterfaceKind is a tagged union over VirtualInterface.Kind.
type InterfaceKind struct {
	Tag       InterfaceKindTag
	Bridge    *BridgeKind
	VXLAN     *VXLANKind
	VETH      *VETHKind
	VLAN      *VLANKind
	MACVLAN   *MACVLANKind
	GRE       *GREKind
	GRETAP    *GRETAPKind
	IP6GRE    *IP6GREKind
	IP6GRETAP *IP6GRETAPKind
}

// VirtualInterface is a single kernel-level network device tracked in the
// catalog.
type VirtualInterface struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Namespace *uuid.UUID       `json:"namespace,omitempty"` // owning namespace, if any
	Parent    *uuid.UUID       `json:"parent,omitempty"`    // owning bridge, if any
	Kind      InterfaceKind    `json:"kind"`
	Addresses []net.IPNet      `json:"addresses,omitempty"`
	MAC       net.HardwareAddr `json:"mac,omitempty"`
}

// NetworkNamespace is a kernel network namespace and the interfaces it
// contains.
type NetworkNamespace struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Interfaces []uuid.UUID `json:"interfaces,omitempty"`
}
