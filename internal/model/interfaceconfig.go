package model

import "net"

// InterfaceConfig is the caller-supplied description passed to
// create_virtual_interface / create_virtual_interface_in_namespace. Only
// the fields relevant to Kind need be populated.
type InterfaceConfig struct {
	Kind InterfaceKindTag
	Name string // desired kernel name; callers may leave empty to let the orchestrator generate one

	// VXLAN
	VNI        uint32
	MCastAddr  net.IP
	Port       uint16

	// VLAN
	VLANTag   uint16
	ParentDev string

	// MACVLAN / GRE family (reserved, Unimplemented)
	Local  net.IP
	Remote net.IP
}
