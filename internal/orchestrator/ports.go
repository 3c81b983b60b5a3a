package orchestrator

import (
	"context"
	"net"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/nsworker"
)

// NetlinkDriver is the subset of internal/netlinkdrv.Driver the
// orchestrator depends on, narrowed to an interface so tests can supply a
// fake instead of touching the real kernel.
type NetlinkDriver interface {
	CreateBridge(ctx context.Context, name string) error
	CreateVeth(ctx context.Context, nameA, nameB string) error
	CreateVLAN(ctx context.Context, name, parentName string, tag uint16) error
	CreateMcastVXLAN(ctx context.Context, name, parentName string, vni uint32, group net.IP, port uint16) error
	CreatePtpVXLAN(ctx context.Context, name, parentName string, vni uint32, local, remote net.IP, port uint16) error
	DeleteInterface(ctx context.Context, name string) error
	SetMaster(ctx context.Context, iface, bridge string) error
	ClearMaster(ctx context.Context, iface string) error
	SetUp(ctx context.Context, iface string) error
	SetDown(ctx context.Context, iface string) error
	Rename(ctx context.Context, iface, newName string) error
	SetMAC(ctx context.Context, iface string, mac net.HardwareAddr) error
	AddAddress(ctx context.Context, iface string, ip net.IP, prefix int) error
	DelAddress(ctx context.Context, iface string, ip net.IP) error
	ListAddresses(ctx context.Context, iface string) ([]net.IPNet, error)
	MoveToNamespace(ctx context.Context, iface, nsName string) error
	LinkExists(name string) bool
}

// NFTDriver is the subset of internal/nftdrv.Driver the orchestrator
// depends on.
type NFTDriver interface {
	ConfigureNAT(sourceCIDR *net.IPNet, egressIface string) (string, error)
	CleanNAT(tableName string) error
}

// DHCPManager is the subset of internal/dhcp.Manager the orchestrator
// depends on.
type DHCPManager interface {
	Start(b dhcp.Binding, p dhcp.Params) error
	Stop(b dhcp.Binding) error
}

// WorkerSupervisor is the subset of internal/nsworker.Supervisor the
// orchestrator depends on.
type WorkerSupervisor interface {
	Spawn(ctx context.Context, nsName string, nsID uuid.UUID, locator string) error
	WaitReady(ctx context.Context, nsID uuid.UUID) error
	Get(nsID uuid.UUID) (nsworker.Client, error)
	Remove(nsID uuid.UUID) (int, nsworker.Client, error)
	Kill(nsID uuid.UUID) error
}
