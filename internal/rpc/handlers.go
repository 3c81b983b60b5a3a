package rpc

import (
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, vnerr.Wrap(vnerr.EncodingError, "parse "+name, err)
	}
	return id, nil
}

func (s *Server) handleCreateDefaultNetwork(w http.ResponseWriter, r *http.Request) {
	dhcp := r.URL.Query().Get("dhcp") != "false"
	network, err := s.orch.CreateDefaultVirtualNetwork(r.Context(), dhcp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, network)
}

func (s *Server) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	network, err := s.orch.CreateVirtualNetwork(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, network)
}

func (s *Server) handleDeleteNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.DeleteVirtualNetwork(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// createInterfaceRequest is the wire shape of create_virtual_interface;
// it is decoded into a model.InterfaceConfig rather than exposing the
// catalog type directly on the wire.
type createInterfaceRequest struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	VNI       uint32 `json:"vni,omitempty"`
	MCastAddr string `json:"mcast_addr,omitempty"`
	Port      uint16 `json:"port,omitempty"`
	VLANTag   uint16 `json:"vlan_tag,omitempty"`
	ParentDev string `json:"parent_dev,omitempty"`
	Local     string `json:"local,omitempty"`
	Remote    string `json:"remote,omitempty"`
}

var interfaceKindsByName = map[string]model.InterfaceKindTag{
	"bridge":    model.KindBridge,
	"vxlan":     model.KindVXLAN,
	"veth":      model.KindVETH,
	"vlan":      model.KindVLAN,
	"macvlan":   model.KindMACVLAN,
	"gre":       model.KindGRE,
	"gretap":    model.KindGRETAP,
	"ip6gre":    model.KindIP6GRE,
	"ip6gretap": model.KindIP6GRETAP,
}

func (req createInterfaceRequest) toConfig() (model.InterfaceConfig, error) {
	tag, ok := interfaceKindsByName[req.Kind]
	if !ok {
		return model.InterfaceConfig{}, vnerr.New(vnerr.WrongKind, "unknown interface kind "+req.Kind)
	}
	cfg := model.InterfaceConfig{
		Kind:      tag,
		Name:      req.Name,
		VNI:       req.VNI,
		Port:      req.Port,
		VLANTag:   req.VLANTag,
		ParentDev: req.ParentDev,
	}
	if req.MCastAddr != "" {
		cfg.MCastAddr = net.ParseIP(req.MCastAddr)
	}
	if req.Local != "" {
		cfg.Local = net.ParseIP(req.Local)
	}
	if req.Remote != "" {
		cfg.Remote = net.ParseIP(req.Remote)
	}
	return cfg, nil
}

func (s *Server) handleCreateInterface(w http.ResponseWriter, r *http.Request) {
	var req createInterfaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		writeError(w, err)
		return
	}
	iface, err := s.orch.CreateVirtualInterface(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iface)
}

func (s *Server) handleCreateInterfaceInNamespace(w http.ResponseWriter, r *http.Request) {
	nsID, err := pathUUID(r, "nsId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createInterfaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		writeError(w, err)
		return
	}
	iface, err := s.orch.CreateVirtualInterfaceInNamespace(r.Context(), cfg, nsID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iface)
}

func (s *Server) handleDeleteInterface(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.DeleteVirtualInterface(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAttachToBridge(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	bridgeID, err := pathUUID(r, "bridgeId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.AttachToBridge(r.Context(), id, bridgeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDetachFromBridge(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.DetachFromBridge(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	if err := s.orch.Rename(r.Context(), id, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type macRequest struct {
	MAC string `json:"mac"`
}

func (s *Server) handleSetMAC(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req macRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	mac, err := net.ParseMAC(req.MAC)
	if err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "parse mac", err))
		return
	}
	if err := s.orch.SetMAC(r.Context(), id, mac); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type addressRequest struct {
	IP     string `json:"ip"`
	Prefix int    `json:"prefix,omitempty"`
}

func (s *Server) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	ip := net.ParseIP(req.IP)
	if ip == nil {
		writeError(w, vnerr.New(vnerr.EncodingError, "invalid ip address"))
		return
	}
	if err := s.orch.AddAddress(r.Context(), id, ip, req.Prefix); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDelAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	ip := net.ParseIP(req.IP)
	if ip == nil {
		writeError(w, vnerr.New(vnerr.EncodingError, "invalid ip address"))
		return
	}
	if err := s.orch.DelAddress(r.Context(), id, ip); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMoveToNamespace(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	nsID, err := pathUUID(r, "nsId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.MoveToNamespace(r.Context(), id, nsID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMoveToDefaultNamespace(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.orch.MoveToDefaultNamespace(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type defaultRouteRequest struct {
	Gateway string `json:"gateway"`
}

func (s *Server) handleSetDefaultRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req defaultRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, vnerr.Wrap(vnerr.EncodingError, "decode request", err))
		return
	}
	gw := net.ParseIP(req.Gateway)
	if gw == nil {
		writeError(w, vnerr.New(vnerr.EncodingError, "invalid gateway address"))
		return
	}
	if err := s.orch.SetDefaultRoute(r.Context(), id, gw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
