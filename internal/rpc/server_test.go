package rpc

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-fog05/fog05-net-linux/internal/catalog"
	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/nsworker"
	"github.com/eclipse-fog05/fog05-net-linux/internal/orchestrator"
)

// noopNetlink satisfies orchestrator.NetlinkDriver without touching the
// kernel, for routing-layer tests.
type noopNetlink struct{}

func (noopNetlink) CreateBridge(ctx context.Context, name string) error { return nil }
func (noopNetlink) CreateVeth(ctx context.Context, a, b string) error   { return nil }
func (noopNetlink) CreateVLAN(ctx context.Context, name, parent string, tag uint16) error {
	return nil
}
func (noopNetlink) CreateMcastVXLAN(ctx context.Context, name, parent string, vni uint32, group net.IP, port uint16) error {
	return nil
}
func (noopNetlink) CreatePtpVXLAN(ctx context.Context, name, parent string, vni uint32, local, remote net.IP, port uint16) error {
	return nil
}
func (noopNetlink) DeleteInterface(ctx context.Context, name string) error        { return nil }
func (noopNetlink) SetMaster(ctx context.Context, iface, bridge string) error     { return nil }
func (noopNetlink) ClearMaster(ctx context.Context, iface string) error           { return nil }
func (noopNetlink) SetUp(ctx context.Context, iface string) error                 { return nil }
func (noopNetlink) SetDown(ctx context.Context, iface string) error               { return nil }
func (noopNetlink) Rename(ctx context.Context, iface, newName string) error       { return nil }
func (noopNetlink) SetMAC(ctx context.Context, iface string, mac net.HardwareAddr) error {
	return nil
}
func (noopNetlink) AddAddress(ctx context.Context, iface string, ip net.IP, prefix int) error {
	return nil
}
func (noopNetlink) DelAddress(ctx context.Context, iface string, ip net.IP) error { return nil }
func (noopNetlink) ListAddresses(ctx context.Context, iface string) ([]net.IPNet, error) {
	return nil, nil
}
func (noopNetlink) MoveToNamespace(ctx context.Context, iface, nsName string) error { return nil }
func (noopNetlink) LinkExists(name string) bool                                    { return false }

type noopNFT struct{}

func (noopNFT) ConfigureNAT(cidr *net.IPNet, egress string) (string, error) {
	return "tablefakefakefake", nil
}
func (noopNFT) CleanNAT(tableName string) error { return nil }

type noopDHCP struct{}

func (noopDHCP) Start(b dhcp.Binding, p dhcp.Params) error { return nil }
func (noopDHCP) Stop(b dhcp.Binding) error                 { return nil }

type noopWorkerClient struct{}

func (noopWorkerClient) AddVirtualInterfaceVeth(ctx context.Context, a, b string) error   { return nil }
func (noopWorkerClient) AddVirtualInterfaceBridge(ctx context.Context, name string) error { return nil }
func (noopWorkerClient) SetVirtualInterfaceUp(ctx context.Context, name string) error     { return nil }
func (noopWorkerClient) SetVirtualInterfaceName(ctx context.Context, name, newName string) error {
	return nil
}
func (noopWorkerClient) SetVirtualInterfaceMaster(ctx context.Context, name, bridge string) error {
	return nil
}
func (noopWorkerClient) SetVirtualInterfaceNoMaster(ctx context.Context, name string) error {
	return nil
}
func (noopWorkerClient) SetVirtualInterfaceMAC(ctx context.Context, name string, mac net.HardwareAddr) error {
	return nil
}
func (noopWorkerClient) SetVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP, prefix int) error {
	return nil
}
func (noopWorkerClient) DelVirtualInterface(ctx context.Context, name string) error { return nil }
func (noopWorkerClient) DelVirtualInterfaceAddress(ctx context.Context, name string, ip net.IP) error {
	return nil
}
func (noopWorkerClient) MoveVirtualInterfaceIntoDefaultNS(ctx context.Context, name string) error {
	return nil
}
func (noopWorkerClient) SetDefaultRoute(ctx context.Context, gateway net.IP) error { return nil }
func (noopWorkerClient) VerifyServer(ctx context.Context) (bool, error)            { return true, nil }
func (noopWorkerClient) Close() error                                             { return nil }

type noopSupervisor struct{ spawned map[uuid.UUID]bool }

func newNoopSupervisor() *noopSupervisor { return &noopSupervisor{spawned: map[uuid.UUID]bool{}} }

func (s *noopSupervisor) Spawn(ctx context.Context, nsName string, nsID uuid.UUID, locator string) error {
	s.spawned[nsID] = true
	return nil
}
func (s *noopSupervisor) WaitReady(ctx context.Context, nsID uuid.UUID) error { return nil }
func (s *noopSupervisor) Get(nsID uuid.UUID) (nsworker.Client, error)        { return noopWorkerClient{}, nil }
func (s *noopSupervisor) Remove(nsID uuid.UUID) (int, nsworker.Client, error) {
	return 1, noopWorkerClient{}, nil
}
func (s *noopSupervisor) Kill(nsID uuid.UUID) error { return nil }

type noopGlobalCatalog struct{ networks map[uuid.UUID]*model.VirtualNetwork }

func (g *noopGlobalCatalog) DesiredNetwork(id uuid.UUID) (*model.VirtualNetwork, bool) {
	n, ok := g.networks[id]
	return n, ok
}

func newTestServer() *Server {
	local := catalog.NewMemory()
	global := &noopGlobalCatalog{networks: map[uuid.UUID]*model.VirtualNetwork{}}
	orch := orchestrator.New(
		orchestrator.Config{OverlayInterface: "eth0", RunPath: "/run/fog05"},
		noopNetlink{}, noopNFT{}, newNoopSupervisor(), noopDHCP{}, local, global, nil,
	)
	return NewServer(orch, nil)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDefaultNetworkEndpoint(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/networks/default?dhcp=false", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Eclipse fog05 default virtual network")
}

func TestCreateNetworkNotFoundMapsTo404(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/networks/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateInterfaceUnknownKindMapsTo400(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/interfaces", strings.NewReader(`{"kind":"nonsense"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVethInterfaceSucceeds(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/interfaces", strings.NewReader(`{"kind":"veth"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
