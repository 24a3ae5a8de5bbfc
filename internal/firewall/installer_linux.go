// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package firewall

import (
	"github.com/google/nftables"
	"github.com/google/nftables/expr"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// NFTablesConn is the subset of *nftables.Conn the installer needs.
type NFTablesConn interface {
	AddTable(t *nftables.Table) *nftables.Table
	AddChain(c *nftables.Chain) *nftables.Chain
	AddRule(r *nftables.Rule) *nftables.Rule
	DelTable(t *nftables.Table)
	ListTables() ([]*nftables.Table, error)
	Flush() error
}

// Installer manages the sphinx table over netlink.
type Installer struct {
	conn   NFTablesConn
	table  string
	queue  uint16
	logger *logging.Logger
}

// NewInstaller opens an nftables connection.
func NewInstaller(table string, queue uint16, logger *logging.Logger) (*Installer, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindPermission, "failed to open nftables connection")
	}
	return NewInstallerWithConn(conn, table, queue, logger), nil
}

// NewInstallerWithConn creates an installer with an injected connection.
func NewInstallerWithConn(conn NFTablesConn, table string, queue uint16, logger *logging.Logger) *Installer {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = logging.WithComponent("firewall")
	}
	return &Installer{conn: conn, table: table, queue: queue, logger: logger}
}

// Install replaces the sphinx table with a fresh one that queues every
// non-loopback outbound IPv4 packet. The bypass flag lets traffic through
// while nothing is bound to the queue.
func (i *Installer) Install() error {
	existing, err := i.lookup()
	if err != nil {
		return err
	}
	if existing != nil {
		i.conn.DelTable(existing)
	}

	table := i.conn.AddTable(&nftables.Table{
		Name:   i.table,
		Family: nftables.TableFamilyIPv4,
	})

	policy := nftables.ChainPolicyAccept
	chain := i.conn.AddChain(&nftables.Chain{
		Name:     ChainName,
		Table:    table,
		Type:     nftables.ChainTypeFilter,
		Hooknum:  nftables.ChainHookOutput,
		Priority: nftables.ChainPriorityFilter,
		Policy:   &policy,
	})

	i.conn.AddRule(&nftables.Rule{
		Table: table,
		Chain: chain,
		Exprs: []expr.Any{
			&expr.Meta{Key: expr.MetaKeyOIFNAME, Register: 1},
			&expr.Cmp{Op: expr.CmpOpEq, Register: 1, Data: ifname(LoopbackIface)},
			&expr.Verdict{Kind: expr.VerdictAccept},
		},
	})

	i.conn.AddRule(&nftables.Rule{
		Table: table,
		Chain: chain,
		Exprs: []expr.Any{
			&expr.Queue{Num: i.queue, Flag: expr.QueueFlagBypass},
		},
	})

	if err := i.conn.Flush(); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindPermission, "failed to install queue rules"), "table", i.table)
	}
	i.logger.Info("Queue rules installed", "table", i.table, "queue", i.queue)
	return nil
}

// Remove deletes the sphinx table. A missing table is not an error.
func (i *Installer) Remove() error {
	existing, err := i.lookup()
	if err != nil {
		return err
	}
	if existing == nil {
		i.logger.Debug("No queue rules to remove", "table", i.table)
		return nil
	}

	i.conn.DelTable(existing)
	if err := i.conn.Flush(); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindPermission, "failed to remove queue rules"), "table", i.table)
	}
	i.logger.Info("Queue rules removed", "table", i.table)
	return nil
}

func (i *Installer) lookup() (*nftables.Table, error) {
	tables, err := i.conn.ListTables()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindPermission, "failed to list nftables tables")
	}
	for _, t := range tables {
		if t.Name == i.table && t.Family == nftables.TableFamilyIPv4 {
			return t, nil
		}
	}
	return nil, nil
}

// ifname pads an interface name to IFNAMSIZ as the kernel compares it.
func ifname(n string) []byte {
	b := make([]byte, 16)
	copy(b, n+"\x00")
	return b
}
