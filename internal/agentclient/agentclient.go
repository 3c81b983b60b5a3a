// Package agentclient defines the agent collaborator spec.md §6 lists as
// external: node identity and plugin-registration lifecycle.
package agentclient

import "context"

// Agent supplies node identity and the plugin registration lifecycle the
// main loop's cancellation path drives (spec §5: "unregistering the
// plugin" is the first step of a clean shutdown).
type Agent interface {
	NodeUUID(ctx context.Context) (string, error)
	RegisterPlugin(ctx context.Context, pluginName string) error
	UnregisterPlugin(ctx context.Context, pluginName string) error
}

// Noop is a do-nothing Agent for standalone operation or tests, where no
// orchestrator-wide agent process is present.
type Noop struct {
	NodeID string
}

func (n Noop) NodeUUID(ctx context.Context) (string, error) { return n.NodeID, nil }
func (n Noop) RegisterPlugin(ctx context.Context, pluginName string) error   { return nil }
func (n Noop) UnregisterPlugin(ctx context.Context, pluginName string) error { return nil }

var _ Agent = Noop{}
