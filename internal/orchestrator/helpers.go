package orchestrator

import (
	"github.com/eclipse-fog05/fog05-net-linux/internal/dhcp"
	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
)

func toDHCPBinding(b *model.DHCPBinding) dhcp.Binding {
	return dhcp.Binding{
		ConfPath:   b.ConfPath,
		PIDPath:    b.PIDPath,
		LeasesPath: b.LeasesPath,
		LogPath:    b.LogPath,
	}
}

func networkTableNames(n *model.VirtualNetwork) []string {
	if n.Internals == nil {
		return nil
	}
	return n.Internals.NFTableNames
}
