// Package dhcp renders a dnsmasq configuration from the per-network DHCP
// parameters, starts a detached dnsmasq process bound to it, and tears
// both down on teardown.
package dhcp

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"text/template"

	"github.com/eclipse-fog05/fog05-net-linux/internal/osfile"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
	"golang.org/x/sys/unix"
)

// Binding names the filesystem artifacts a running dnsmasq instance owns.
type Binding struct {
	ConfPath   string
	PIDPath    string
	LeasesPath string
	LogPath    string
}

// Params carries the per-network parameters the template needs.
type Params struct {
	Interface  string
	RangeStart net.IP
	RangeEnd   net.IP
	Gateway    net.IP
	DNS        []net.IP
}

type templateContext struct {
	DHCPInterface string
	LeaseFile     string
	DHCPPid       string
	DHCPLog       string
	DHCPStart     string
	DHCPEnd       string
	DefaultGW     string
	DefaultDNS    []string
}

// Manager renders dnsmasq configs and supervises the dnsmasq process per
// network.
type Manager struct {
	os     osfile.OS
	tmpl   *template.Template
	logger *slog.Logger
}

// New returns a Manager. If templateDir is non-empty it must contain a
// "dnsmasq.conf" file which overrides the built-in template.
func New(store osfile.OS, templateDir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var tmpl *template.Template
	var err error
	if templateDir != "" {
		tmpl, err = template.New("dnsmasq.conf").ParseFiles(templateDir + "/dnsmasq.conf")
		if err != nil {
			return nil, vnerr.Wrap(vnerr.NetworkingError, "parse dnsmasq template", err)
		}
	} else {
		tmpl, err = template.New("dnsmasq.conf").Parse(dnsmasqConfTemplate)
		if err != nil {
			return nil, vnerr.Wrap(vnerr.HardFailure, "parse built-in dnsmasq template", err)
		}
	}
	return &Manager{os: store, tmpl: tmpl, logger: logger}, nil
}

// Render produces the dnsmasq config text for binding/params.
func (m *Manager) Render(b Binding, p Params) (string, error) {
	dns := make([]string, 0, len(p.DNS))
	for _, d := range p.DNS {
		dns = append(dns, d.String())
	}
	ctx := templateContext{
		DHCPInterface: p.Interface,
		LeaseFile:     b.LeasesPath,
		DHCPPid:       b.PIDPath,
		DHCPLog:       b.LogPath,
		DHCPStart:     p.RangeStart.String(),
		DHCPEnd:       p.RangeEnd.String(),
		DefaultGW:     p.Gateway.String(),
		DefaultDNS:    dns,
	}
	var sb strings.Builder
	if err := m.tmpl.Execute(&sb, ctx); err != nil {
		return "", vnerr.Wrap(vnerr.NetworkingError, "render dnsmasq config", err)
	}
	return sb.String(), nil
}

// Start renders the config, writes it via the OS collaborator and spawns
// a detached dnsmasq bound to it.
func (m *Manager) Start(b Binding, p Params) error {
	rendered, err := m.Render(b, p)
	if err != nil {
		return err
	}
	if err := m.os.WriteFile(b.ConfPath, []byte(rendered), 0o644); err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, "write dnsmasq config", err)
	}

	cmd := exec.Command("dnsmasq", "-C", b.ConfPath)
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, "spawn dnsmasq", err)
	}
	m.logger.Info("started dnsmasq",
		slog.String("conf", b.ConfPath),
		slog.Int("pid", cmd.Process.Pid),
	)
	return nil
}

// Stop reads the dnsmasq pid file, sends SIGKILL, then unlinks the
// config, pid, leases and log files. Each unlink is best-effort.
func (m *Manager) Stop(b Binding) error {
	raw, err := m.os.ReadFile(b.PIDPath)
	if err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, "read dnsmasq pid file", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return vnerr.Wrap(vnerr.EncodingError, "parse dnsmasq pid", err)
	}
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return vnerr.Wrap(vnerr.NetworkingError, fmt.Sprintf("kill dnsmasq pid %d", pid), err)
	}

	for _, path := range []string{b.ConfPath, b.PIDPath, b.LeasesPath, b.LogPath} {
		if err := m.os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("failed to remove dnsmasq artifact", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	return nil
}
