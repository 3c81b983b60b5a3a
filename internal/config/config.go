// Package config loads the plugin's process configuration from the
// environment, following the corpus's envconfig convention.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process-wide configuration for the vnetd daemon. Every
// field is overridable via an FOSNET_-prefixed environment variable
// (envconfig derives FOSNET_OVERLAY_INTERFACE from OverlayInterface,
// etc.).
type Config struct {
	// OverlayInterface is the physical NIC VXLAN tunnels ride on.
	OverlayInterface string `envconfig:"OVERLAY_INTERFACE" default:"eth0"`

	// RunPath holds the DHCP conf/lease/pid/log artifacts.
	RunPath string `envconfig:"RUN_PATH" default:"/var/run/fos5/net-linux"`

	// WorkerBinaryPath is the namespace-worker executable the
	// supervisor spawns once per constructed virtual network.
	WorkerBinaryPath string `envconfig:"WORKER_BINARY_PATH" default:"/usr/bin/fos-net-linux-worker"`

	// DHCPTemplateDir, when set, overrides the built-in dnsmasq
	// template with one loaded from disk.
	DHCPTemplateDir string `envconfig:"DHCP_TEMPLATE_DIR"`

	// ListenAddress is where the RPC surface (gorilla/mux router)
	// listens for agent/CLI requests.
	ListenAddress string `envconfig:"LISTEN_ADDRESS" default:"127.0.0.1:8087"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// NodeUUID identifies this node to the agent collaborator; empty
	// means "ask the agent."
	NodeUUID string `envconfig:"NODE_UUID"`

	// MetricsAddress is where Prometheus scrapes /metrics; empty
	// disables the metrics listener.
	MetricsAddress string `envconfig:"METRICS_ADDRESS" default:":9187"`

	// EnableDefaultNetworkDHCP controls whether the fixed default
	// network (spec's fos-default) gets a dnsmasq instance at startup.
	EnableDefaultNetworkDHCP bool `envconfig:"ENABLE_DEFAULT_NETWORK_DHCP" default:"true"`
}

// Load reads Config from the environment, applying defaults for anything
// unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("fosnet", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}
