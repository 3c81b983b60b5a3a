// Command vnetd is the fog05 Linux virtual-networking plugin daemon: it
// wires configuration, observability, the catalog, drivers and the
// orchestrator together behind the RPC surface, and drives the top-level
// stop sequence of spec §5 on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/agentclient"
	"github.com/eclipse-fog05/fog05-net-linux/internal/catalog"
	"github.com/eclipse-fog05/fog05-net-linux/internal/config"
	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/netlinkdrv"
	"github.com/eclipse-fog05/fog05-net-linux/internal/nftdrv"
	"github.com/eclipse-fog05/fog05-net-linux/internal/nsworker"
	"github.com/eclipse-fog05/fog05-net-linux/internal/observability"
	"github.com/eclipse-fog05/fog05-net-linux/internal/orchestrator"
	"github.com/eclipse-fog05/fog05-net-linux/internal/osfile"
	"github.com/eclipse-fog05/fog05-net-linux/internal/rpc"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vnetd",
		Short: "fog05 Linux virtual-networking plugin daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	return cmd
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	obs, err := observability.New(cfg.LogLevel, orchestrator.PluginName, nil)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	logger := obs.Logger

	dhcpMgr, err := dhcp.New(osfile.Real{}, cfg.DHCPTemplateDir, logger)
	if err != nil {
		return fmt.Errorf("init dhcp manager: %w", err)
	}

	local := catalog.NewMemory()
	global := agentGlobalCatalogStub{}
	agent := agentclient.Noop{NodeID: cfg.NodeUUID}

	orchCfg := orchestrator.Config{
		OverlayInterface: cfg.OverlayInterface,
		RunPath:          cfg.RunPath,
	}
	orch := orchestrator.New(
		orchCfg,
		netlinkdrv.New(logger),
		nftdrv.New(logger),
		nsworker.New(cfg.WorkerBinaryPath, nil, logger),
		dhcpMgr,
		local,
		global,
		logger,
	).WithObservability(obs.Metrics, obs.Tracer)

	if _, err := orch.CreateDefaultVirtualNetwork(ctx, cfg.EnableDefaultNetworkDHCP); err != nil {
		return fmt.Errorf("bootstrap default network: %w", err)
	}

	if err := agent.RegisterPlugin(ctx, orchestrator.PluginName); err != nil {
		logger.Warn("register plugin failed", "error", err)
	}

	server := rpc.NewServer(orch, logger)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var metricsServer *http.Server
	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("vnetd listening", "address", cfg.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("rpc server error", "error", err)
		}
	}()

	<-sigCh
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	_ = obs.Shutdown(shutdownCtx)

	if err := orch.Shutdown(shutdownCtx, agent); err != nil {
		logger.Error("shutdown sequence failed", "error", err)
		return err
	}
	return nil
}

// agentGlobalCatalogStub stands in for the external cluster-wide global
// catalog until a concrete client exists: spec §6 names it a collaborator
// this plugin consumes, not one it implements.
type agentGlobalCatalogStub struct{}

func (agentGlobalCatalogStub) DesiredNetwork(id uuid.UUID) (*model.VirtualNetwork, bool) {
	return nil, false
}

var _ catalog.GlobalCatalog = agentGlobalCatalogStub{}
