// Package nftdrv builds the netfilter NAT transaction the orchestrator
// attaches to networks that need external connectivity: a table, a
// postrouting nat chain, and a single masquerade rule keyed on a source
// CIDR and an egress interface index.
package nftdrv

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/nftables"
	"github.com/google/nftables/expr"
	"github.com/vishvananda/netlink"

	"github.com/eclipse-fog05/fog05-net-linux/internal/idgen"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// Driver submits NAT configuration/teardown batches over the netfilter
// netlink socket via github.com/google/nftables.
type Driver struct {
	logger *slog.Logger
}

// New returns a Driver logging through logger.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{logger: logger}
}

// networkAndMask returns the IPv4 network address and mask bytes for cidr,
// used to build the bitwise-and-compare pair of the masquerade rule.
func networkAndMask(cidr *net.IPNet) (network, mask []byte, err error) {
	ip4 := cidr.IP.To4()
	if ip4 == nil {
		return nil, nil, vnerr.New(vnerr.EncodingError, "source CIDR is not IPv4")
	}
	m := net.IP(cidr.Mask).To4()
	if m == nil {
		return nil, nil, vnerr.New(vnerr.EncodingError, "source CIDR mask is not IPv4")
	}
	net4 := make([]byte, 4)
	for i := range ip4 {
		net4[i] = ip4[i] & m[i]
	}
	return net4, []byte(m), nil
}

// ConfigureNAT builds a table/chain/rule batch masquerading traffic from
// sourceCIDR out egressIface, submits it in one transaction, and returns
// the generated table name for storage in plugin_internals.
func (d *Driver) ConfigureNAT(sourceCIDR *net.IPNet, egressIface string) (string, error) {
	link, err := netlink.LinkByName(egressIface)
	if err != nil {
		return "", vnerr.Wrap(vnerr.NotFound, fmt.Sprintf("egress interface %q", egressIface), err)
	}
	oifIndex := uint32(link.Attrs().Index)

	tableName := idgen.NFTableName()
	conn := &nftables.Conn{}

	table := conn.AddTable(&nftables.Table{
		Name:   tableName,
		Family: nftables.TableFamilyINet,
	})
	chain := conn.AddChain(&nftables.Chain{
		Name:     "postrouting",
		Table:    table,
		Type:     nftables.ChainTypeNAT,
		Hooknum:  nftables.ChainHookPostrouting,
		Priority: nftables.ChainPriorityRef(0),
	})

	network, mask, err := networkAndMask(sourceCIDR)
	if err != nil {
		return "", err
	}

	oifBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(oifBytes, oifIndex)

	conn.AddRule(&nftables.Rule{
		Table: table,
		Chain: chain,
		Exprs: []expr.Any{
			&expr.Payload{
				DestRegister: 1,
				Base:         expr.PayloadBaseNetworkHeader,
				Offset:       12,
				Len:          4,
			},
			&expr.Bitwise{
				SourceRegister: 1,
				DestRegister:   1,
				Len:            4,
				Mask:           []byte(mask),
				Xor:            []byte{0, 0, 0, 0},
			},
			&expr.Cmp{
				Op:       expr.CmpOpEq,
				Register: 1,
				Data:     []byte(network),
			},
			&expr.Meta{Key: expr.MetaKeyOIF, Register: 2},
			&expr.Cmp{
				Op:       expr.CmpOpEq,
				Register: 2,
				Data:     oifBytes,
			},
			&expr.Masq{},
		},
	})

	if err := conn.Flush(); err != nil {
		return "", vnerr.Wrap(vnerr.NetworkingError, "submit NAT batch", err)
	}

	d.logger.Info("configured NAT",
		slog.String("table", tableName),
		slog.String("source_cidr", sourceCIDR.String()),
		slog.String("egress_iface", egressIface),
	)
	return tableName, nil
}

// CleanNAT deletes the inet table named tableName. The caller must assume
// the table may or may not exist; teardown tolerates an "already absent"
// failure.
func (d *Driver) CleanNAT(tableName string) error {
	conn := &nftables.Conn{}
	conn.DelTable(&nftables.Table{
		Name:   tableName,
		Family: nftables.TableFamilyINet,
	})
	if err := conn.Flush(); err != nil {
		return vnerr.Wrap(vnerr.NetworkingError, fmt.Sprintf("delete NAT table %q", tableName), err)
	}
	d.logger.Info("cleaned NAT table", slog.String("table", tableName))
	return nil
}
