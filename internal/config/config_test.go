package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	// envconfig applies a default only to an unset variable, not to one
	// set to "": t.Setenv registers restoring any prior value, then the
	// variable is removed for the duration of the test.
	t.Setenv("FOSNET_OVERLAY_INTERFACE", "")
	require.NoError(t, os.Unsetenv("FOSNET_OVERLAY_INTERFACE"))
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "eth0", cfg.OverlayInterface)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.EnableDefaultNetworkDHCP)
}

func TestLoadHonorsEnvironmentOverride(t *testing.T) {
	t.Setenv("FOSNET_OVERLAY_INTERFACE", "bond0")
	t.Setenv("FOSNET_LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "bond0", cfg.OverlayInterface)
	require.Equal(t, "debug", cfg.LogLevel)
}
