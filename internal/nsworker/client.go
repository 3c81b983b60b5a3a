package nsworker

import (
	"context"
	"net"

	"github.com/google/uuid"
)

// Client is the set of operations the namespace worker process exposes
// over its own RPC endpoint, per spec §4.3.
type Client interface {
	AddVirtualInterfaceVeth(ctx context.Context, a, b string) error
	AddVirtualInterfaceBridge(ctx context.Context, name string) error
	SetVirtualInterfaceUp(ctx context.Context, name string) error
	SetVirtualInterfaceName(ctx context.Context, name, newName string) error
	SetVirtualInterfaceMaster(ctx context.Context, name, bridge string) error
	SetVirtualInterfaceNoMaster(ctx context.Context, name string) error
	SetVirtualInterfaceMAC(ctx context.Context, name string, mac net.HardwareAddr) error
	SetVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP, prefix int) error
	DelVirtualInterface(ctx context.Context, name string) error
	DelVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP) error
	MoveVirtualInterfaceIntoDefaultNS(ctx context.Context, name string) error
	SetDefaultRoute(ctx context.Context, gateway net.IP) error
	VerifyServer(ctx context.Context) (bool, error)
	Close() error
}

// Dialer constructs a Client bound to the endpoint a freshly spawned
// worker identified by nsID is expected to establish at locator. The wire
// protocol between supervisor and worker is an external collaborator per
// spec §1 ("the RPC transport used to reach it"); Dialer lets the caller
// supply any implementation, with NetRPCDial as the default.
type Dialer func(ctx context.Context, nsID uuid.UUID, locator string) (Client, error)
