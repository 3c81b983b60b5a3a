// Package rpc exposes the Virtual-Network Orchestrator as a JSON-over-HTTP
// API, one handler per public operation in spec §4.5, routed with
// gorilla/mux the way thc1006's tn/agent exposes its own node-local
// plugin surface.
package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eclipse-fog05/fog05-net-linux/internal/orchestrator"
)

// Server is the HTTP front end for an Orchestrator.
type Server struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
	router *mux.Router
}

// NewServer builds a Server with all routes registered, ready to be used
// as an http.Handler or wrapped in an *http.Server.
func NewServer(orch *orchestrator.Orchestrator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{orch: orch, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/networks/default", s.handleCreateDefaultNetwork).Methods(http.MethodPost)
	r.HandleFunc("/networks/{id}", s.handleCreateNetwork).Methods(http.MethodPost)
	r.HandleFunc("/networks/{id}", s.handleDeleteNetwork).Methods(http.MethodDelete)

	r.HandleFunc("/interfaces", s.handleCreateInterface).Methods(http.MethodPost)
	r.HandleFunc("/namespaces/{nsId}/interfaces", s.handleCreateInterfaceInNamespace).Methods(http.MethodPost)
	r.HandleFunc("/interfaces/{id}", s.handleDeleteInterface).Methods(http.MethodDelete)

	r.HandleFunc("/interfaces/{id}/bridge/{bridgeId}", s.handleAttachToBridge).Methods(http.MethodPost)
	r.HandleFunc("/interfaces/{id}/bridge", s.handleDetachFromBridge).Methods(http.MethodDelete)
	r.HandleFunc("/interfaces/{id}/name", s.handleRename).Methods(http.MethodPut)
	r.HandleFunc("/interfaces/{id}/mac", s.handleSetMAC).Methods(http.MethodPut)
	r.HandleFunc("/interfaces/{id}/addresses", s.handleAddAddress).Methods(http.MethodPost)
	r.HandleFunc("/interfaces/{id}/addresses", s.handleDelAddress).Methods(http.MethodDelete)
	r.HandleFunc("/interfaces/{id}/namespace/{nsId}", s.handleMoveToNamespace).Methods(http.MethodPost)
	r.HandleFunc("/interfaces/{id}/namespace", s.handleMoveToDefaultNamespace).Methods(http.MethodDelete)
	r.HandleFunc("/interfaces/{id}/default-route", s.handleSetDefaultRoute).Methods(http.MethodPut)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
