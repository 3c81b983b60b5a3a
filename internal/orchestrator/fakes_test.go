package orchestrator

import (
	"context"
	"net"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/catalog"
	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/nsworker"
)

// fakeNetlink records every call made to it instead of touching the
// kernel; it always succeeds unless failOn names the method to fail.
type fakeNetlink struct {
	created []string
	failOn  map[string]bool
}

func newFakeNetlink() *fakeNetlink { return &fakeNetlink{failOn: map[string]bool{}} }

func (f *fakeNetlink) err(method string) error {
	if f.failOn[method] {
		return assertErr(method)
	}
	return nil
}

func (f *fakeNetlink) CreateBridge(ctx context.Context, name string) error {
	f.created = append(f.created, name)
	return f.err("CreateBridge")
}
func (f *fakeNetlink) CreateVeth(ctx context.Context, a, b string) error {
	f.created = append(f.created, a, b)
	return f.err("CreateVeth")
}
func (f *fakeNetlink) CreateVLAN(ctx context.Context, name, parent string, tag uint16) error {
	f.created = append(f.created, name)
	return f.err("CreateVLAN")
}
func (f *fakeNetlink) CreateMcastVXLAN(ctx context.Context, name, parent string, vni uint32, group net.IP, port uint16) error {
	f.created = append(f.created, name)
	return f.err("CreateMcastVXLAN")
}
func (f *fakeNetlink) CreatePtpVXLAN(ctx context.Context, name, parent string, vni uint32, local, remote net.IP, port uint16) error {
	f.created = append(f.created, name)
	return f.err("CreatePtpVXLAN")
}
func (f *fakeNetlink) DeleteInterface(ctx context.Context, name string) error {
	return f.err("DeleteInterface")
}
func (f *fakeNetlink) SetMaster(ctx context.Context, iface, bridge string) error {
	return f.err("SetMaster")
}
func (f *fakeNetlink) ClearMaster(ctx context.Context, iface string) error { return f.err("ClearMaster") }
func (f *fakeNetlink) SetUp(ctx context.Context, iface string) error      { return f.err("SetUp") }
func (f *fakeNetlink) SetDown(ctx context.Context, iface string) error    { return f.err("SetDown") }
func (f *fakeNetlink) Rename(ctx context.Context, iface, newName string) error {
	return f.err("Rename")
}
func (f *fakeNetlink) SetMAC(ctx context.Context, iface string, mac net.HardwareAddr) error {
	return f.err("SetMAC")
}
func (f *fakeNetlink) AddAddress(ctx context.Context, iface string, ip net.IP, prefix int) error {
	return f.err("AddAddress")
}
func (f *fakeNetlink) DelAddress(ctx context.Context, iface string, ip net.IP) error {
	return f.err("DelAddress")
}
func (f *fakeNetlink) ListAddresses(ctx context.Context, iface string) ([]net.IPNet, error) {
	return nil, f.err("ListAddresses")
}
func (f *fakeNetlink) MoveToNamespace(ctx context.Context, iface, nsName string) error {
	return f.err("MoveToNamespace")
}
func (f *fakeNetlink) LinkExists(name string) bool { return false }

type assertErrT string

func (e assertErrT) Error() string { return string(e) }
func assertErr(method string) error { return assertErrT(method + " failed") }

type fakeNFT struct {
	tableName string
	cleaned   []string
}

func (f *fakeNFT) ConfigureNAT(cidr *net.IPNet, egress string) (string, error) {
	if f.tableName == "" {
		f.tableName = "tablefakefakefake"
	}
	return f.tableName, nil
}
func (f *fakeNFT) CleanNAT(tableName string) error {
	f.cleaned = append(f.cleaned, tableName)
	return nil
}

type fakeDHCP struct {
	started bool
	stopped bool
}

func (f *fakeDHCP) Start(b dhcp.Binding, p dhcp.Params) error { f.started = true; return nil }
func (f *fakeDHCP) Stop(b dhcp.Binding) error                 { f.stopped = true; return nil }

type fakeWorkerClient struct{}

func (fakeWorkerClient) AddVirtualInterfaceVeth(ctx context.Context, a, b string) error   { return nil }
func (fakeWorkerClient) AddVirtualInterfaceBridge(ctx context.Context, name string) error { return nil }
func (fakeWorkerClient) SetVirtualInterfaceUp(ctx context.Context, name string) error     { return nil }
func (fakeWorkerClient) SetVirtualInterfaceName(ctx context.Context, name, newName string) error {
	return nil
}
func (fakeWorkerClient) SetVirtualInterfaceMaster(ctx context.Context, name, bridge string) error {
	return nil
}
func (fakeWorkerClient) SetVirtualInterfaceNoMaster(ctx context.Context, name string) error {
	return nil
}
func (fakeWorkerClient) SetVirtualInterfaceMAC(ctx context.Context, name string, mac net.HardwareAddr) error {
	return nil
}
func (fakeWorkerClient) SetVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP, prefix int) error {
	return nil
}
func (fakeWorkerClient) DelVirtualInterface(ctx context.Context, name string) error { return nil }
func (fakeWorkerClient) DelVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP) error {
	return nil
}
func (fakeWorkerClient) MoveVirtualInterfaceIntoDefaultNS(ctx context.Context, name string) error {
	return nil
}
func (fakeWorkerClient) SetDefaultRoute(ctx context.Context, gateway net.IP) error { return nil }
func (fakeWorkerClient) VerifyServer(ctx context.Context) (bool, error)            { return true, nil }
func (fakeWorkerClient) Close() error                                             { return nil }

type failingDelClient struct{ fakeWorkerClient }

func (failingDelClient) DelVirtualInterface(ctx context.Context, name string) error {
	return assertErr("worker refused delete")
}

type fakeSupervisor struct {
	spawned  map[uuid.UUID]bool
	killed   []uuid.UUID
	delFails map[uuid.UUID]bool
}

func newFakeSupervisor() *fakeSupervisor {
	return &fakeSupervisor{spawned: map[uuid.UUID]bool{}, delFails: map[uuid.UUID]bool{}}
}

func (s *fakeSupervisor) Spawn(ctx context.Context, nsName string, nsID uuid.UUID, locator string) error {
	s.spawned[nsID] = true
	return nil
}
func (s *fakeSupervisor) WaitReady(ctx context.Context, nsID uuid.UUID) error {
	if !s.spawned[nsID] {
		return assertErr("not spawned")
	}
	return nil
}
func (s *fakeSupervisor) Get(nsID uuid.UUID) (nsworker.Client, error) {
	if !s.spawned[nsID] {
		return nil, assertErr("not spawned")
	}
	if s.delFails[nsID] {
		return failingDelClient{}, nil
	}
	return fakeWorkerClient{}, nil
}
func (s *fakeSupervisor) Remove(nsID uuid.UUID) (int, nsworker.Client, error) {
	delete(s.spawned, nsID)
	return 1, fakeWorkerClient{}, nil
}
func (s *fakeSupervisor) Kill(nsID uuid.UUID) error {
	s.killed = append(s.killed, nsID)
	delete(s.spawned, nsID)
	return nil
}

type fakeGlobalCatalog struct {
	networks map[uuid.UUID]*model.VirtualNetwork
}

func (g *fakeGlobalCatalog) DesiredNetwork(id uuid.UUID) (*model.VirtualNetwork, bool) {
	n, ok := g.networks[id]
	return n, ok
}

func newTestOrchestrator() (*Orchestrator, *fakeNetlink, *fakeNFT, *fakeSupervisor, *fakeDHCP, *catalog.Memory, *fakeGlobalCatalog) {
	nl := newFakeNetlink()
	nft := &fakeNFT{}
	sup := newFakeSupervisor()
	d := &fakeDHCP{}
	local := catalog.NewMemory()
	global := &fakeGlobalCatalog{networks: map[uuid.UUID]*model.VirtualNetwork{}}
	cfg := Config{OverlayInterface: "eth0", RunPath: "/run/fog05"}
	o := New(cfg, nl, nft, sup, d, local, global, nil)
	return o, nl, nft, sup, d, local, global
}
