// Package netlinkdrv wraps github.com/vishvananda/netlink behind a
// single-writer, retry-on-EBUSY driver offering the link and address
// operations the orchestrator composes into bridges, VXLAN tunnels, VLAN
// sub-interfaces and veth pairs. Operations are not idempotent: creating a
// link whose name already exists, or deleting or modifying one that does
// not, returns an error.
package netlinkdrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"

	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

const (
	retryInitialDelay  = 100 * time.Millisecond
	retryPerAttemptCap = 5 * time.Second
	retryAggregateCap  = 5 * time.Second
)

// Driver serializes all netlink mutations behind an exclusive lock and
// retries kernel EBUSY errors with exponential backoff.
type Driver struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// New returns a Driver logging through logger (never nil; callers pass
// slog.Default() if they have no dedicated logger).
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger}
}

// withRetry runs op, retrying while op reports EBUSY with exponential
// backoff starting at 100ms, doubling each attempt, capped at 5s per
// attempt and 5s aggregate wait. The exclusive lock is held only while op
// runs, not across the sleep between attempts, so other operations can
// make progress.
func (d *Driver) withRetry(ctx context.Context, op func() error) error {
	delay := retryInitialDelay
	var waited time.Duration
	for {
		d.mu.Lock()
		err := op()
		d.mu.Unlock()
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.EBUSY) {
			return vnerr.Wrap(vnerr.NetworkingError, "netlink operation", err)
		}
		if waited >= retryAggregateCap {
			return vnerr.New(vnerr.NetworkingError, "timeout waiting for device busy to clear")
		}
		sleep := delay
		if waited+sleep > retryAggregateCap {
			sleep = retryAggregateCap - waited
		}
		select {
		case <-ctx.Done():
			return vnerr.Wrap(vnerr.NetworkingError, "canceled during retry backoff", ctx.Err())
		case <-time.After(sleep):
		}
		waited += sleep
		delay *= 2
		if delay > retryPerAttemptCap {
			delay = retryPerAttemptCap
		}
	}
}

// linkByName looks up a link outside the retry loop: a missing link is
// "not found", not a retryable condition.
func (d *Driver) linkByName(name string) (netlink.Link, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, vnerr.Wrap(vnerr.NotFound, fmt.Sprintf("interface %q", name), err)
	}
	return link, nil
}

// LinkExists is a cheap existence probe (recovered from the original's
// iface_exists) so callers can skip a doomed create and report
// AlreadyPresent without going through a lookup/retry cycle.
func (d *Driver) LinkExists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := netlink.LinkByName(name)
	return err == nil
}

// CreateBridge creates a bridge device named name.
func (d *Driver) CreateBridge(ctx context.Context, name string) error {
	return d.withRetry(ctx, func() error {
		br := &netlink.Bridge{LinkAttrs: netlink.LinkAttrs{Name: name}}
		return netlink.LinkAdd(br)
	})
}

// CreateVeth creates a veth pair nameA <-> nameB.
func (d *Driver) CreateVeth(ctx context.Context, nameA, nameB string) error {
	return d.withRetry(ctx, func() error {
		veth := &netlink.Veth{
			LinkAttrs: netlink.LinkAttrs{Name: nameA},
			PeerName:  nameB,
		}
		return netlink.LinkAdd(veth)
	})
}

// CreateVLAN creates an 802.1Q sub-interface named name over parentName
// tagged with tag.
func (d *Driver) CreateVLAN(ctx context.Context, name, parentName string, tag uint16) error {
	parent, err := d.linkByName(parentName)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		vlan := &netlink.Vlan{
			LinkAttrs: netlink.LinkAttrs{Name: name, ParentIndex: parent.Attrs().Index},
			VlanId:    int(tag),
		}
		return netlink.LinkAdd(vlan)
	})
}

// CreateMcastVXLAN creates a multicast-mode VXLAN interface over
// parentName with the given VNI, multicast group and UDP port.
func (d *Driver) CreateMcastVXLAN(ctx context.Context, name, parentName string, vni uint32, group net.IP, port uint16) error {
	parent, err := d.linkByName(parentName)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		vx := &netlink.Vxlan{
			LinkAttrs:    netlink.LinkAttrs{Name: name},
			VxlanId:      int(vni),
			VtepDevIndex: parent.Attrs().Index,
			Group:        group,
			Port:         int(port),
			Learning:     true,
		}
		return netlink.LinkAdd(vx)
	})
}

// CreatePtpVXLAN creates a point-to-point VXLAN interface over parentName
// tunneling to remote with the given VNI, local source address and UDP
// port.
func (d *Driver) CreatePtpVXLAN(ctx context.Context, name, parentName string, vni uint32, local, remote net.IP, port uint16) error {
	parent, err := d.linkByName(parentName)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		vx := &netlink.Vxlan{
			LinkAttrs:    netlink.LinkAttrs{Name: name},
			VxlanId:      int(vni),
			VtepDevIndex: parent.Attrs().Index,
			Group:        remote,
			SrcAddr:      local,
			Port:         int(port),
			Learning:     true,
		}
		return netlink.LinkAdd(vx)
	})
}

// DeleteInterface deletes the link named name.
func (d *Driver) DeleteInterface(ctx context.Context, name string) error {
	link, err := d.linkByName(name)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkDel(link)
	})
}

// SetMaster attaches iface to bridge as a member.
func (d *Driver) SetMaster(ctx context.Context, iface, bridge string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	br, err := d.linkByName(bridge)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetMaster(link, br.(*netlink.Bridge))
	})
}

// ClearMaster detaches iface from whatever bridge owns it.
func (d *Driver) ClearMaster(ctx context.Context, iface string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetNoMaster(link)
	})
}

// SetUp brings iface up.
func (d *Driver) SetUp(ctx context.Context, iface string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetUp(link)
	})
}

// SetDown brings iface down.
func (d *Driver) SetDown(ctx context.Context, iface string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetDown(link)
	})
}

// Rename renames iface to newName.
func (d *Driver) Rename(ctx context.Context, iface, newName string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetName(link, newName)
	})
}

// SetMAC sets iface's hardware address.
func (d *Driver) SetMAC(ctx context.Context, iface string, mac net.HardwareAddr) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetHardwareAddr(link, mac)
	})
}

// AddAddress adds ip/prefix to iface.
func (d *Driver) AddAddress(ctx context.Context, iface string, ip net.IP, prefix int) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	bits := 32
	if ip.To4() == nil {
		bits = 128
	}
	addr := &netlink.Addr{IPNet: &net.IPNet{IP: ip, Mask: net.CIDRMask(prefix, bits)}}
	return d.withRetry(ctx, func() error {
		return netlink.AddrAdd(link, addr)
	})
}

// DelAddress removes ip from iface.
func (d *Driver) DelAddress(ctx context.Context, iface string, ip net.IP) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	bits := 32
	if ip.To4() == nil {
		bits = 128
	}
	addr := &netlink.Addr{IPNet: &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}}
	return d.withRetry(ctx, func() error {
		return netlink.AddrDel(link, addr)
	})
}

// ListAddresses returns the addresses currently bound to iface.
func (d *Driver) ListAddresses(ctx context.Context, iface string) ([]net.IPNet, error) {
	link, err := d.linkByName(iface)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, vnerr.Wrap(vnerr.NetworkingError, "list addresses", err)
	}
	out := make([]net.IPNet, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, *a.IPNet)
	}
	return out, nil
}

// MoveToNamespace resolves /run/netns/<nsName> and reassigns iface into
// that namespace.
func (d *Driver) MoveToNamespace(ctx context.Context, iface, nsName string) error {
	link, err := d.linkByName(iface)
	if err != nil {
		return err
	}
	handle, err := netns.GetFromName(nsName)
	if err != nil {
		return vnerr.Wrap(vnerr.NotFound, fmt.Sprintf("namespace %q", nsName), err)
	}
	defer handle.Close()
	return d.withRetry(ctx, func() error {
		return netlink.LinkSetNsFd(link, int(handle))
	})
}
