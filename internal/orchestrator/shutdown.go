package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/eclipse-fog05/fog05-net-linux/internal/agentclient"
)

// PluginName identifies this plugin to the agent collaborator's
// registration lifecycle.
const PluginName = "fos-net-linux"

// Shutdown implements spec §5's only cancellation path: unregister the
// plugin, tear down every realized virtual network (the default network
// included), which along the way stops DHCP, removes NAT tables, and
// kills namespace workers. It is best-effort: a failure tearing down one
// network does not stop the rest, and every error is logged and returned
// joined so the caller can report a hard failure without losing which
// network(s) could not be cleaned up.
func (o *Orchestrator) Shutdown(ctx context.Context, agent agentclient.Agent) error {
	var errs []error

	if agent != nil {
		if err := agent.UnregisterPlugin(ctx, PluginName); err != nil {
			o.logger.Warn("shutdown: unregister plugin failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	for _, network := range o.local.ListNetworks() {
		if err := o.DeleteVirtualNetwork(ctx, network.ID); err != nil {
			o.logger.Warn("shutdown: tearing down network failed",
				slog.String("network", network.ID.String()), slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
