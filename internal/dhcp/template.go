package dhcp

// dnsmasqConfTemplate is the built-in "dnsmasq.conf" template, rendered
// with the context keys spec.md §4.4 names: dhcp_interface, lease_file,
// dhcp_pid, dhcp_log, dhcp_start, dhcp_end, default_gw, default_dns. A
// deployment may override it by pointing Config.DHCPTemplateDir at a
// directory containing its own dnsmasq.conf.
const dnsmasqConfTemplate = `interface={{.DHCPInterface}}
bind-interfaces
dhcp-leasefile={{.LeaseFile}}
dhcp-range={{.DHCPStart}},{{.DHCPEnd}},12h
dhcp-option=option:router,{{.DefaultGW}}
{{- range .DefaultDNS}}
dhcp-option=option:dns-server,{{.}}
{{- end}}
log-facility={{.DHCPLog}}
pid-file={{.DHCPPid}}
`
