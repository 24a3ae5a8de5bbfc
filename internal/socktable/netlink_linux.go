// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package socktable

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// NetlinkReader builds snapshots from NETLINK_SOCK_DIAG, joining socket inodes
// with the /proc fd tables to find the owning process. It reports the same
// records as SSReader without spawning a process per packet.
type NetlinkReader struct {
	procRoot string
	logger   *logging.Logger
}

// NewNetlinkReader creates a reader. procRoot defaults to procfs.DefaultMountPoint.
func NewNetlinkReader(procRoot string, logger *logging.Logger) *NetlinkReader {
	if procRoot == "" {
		procRoot = procfs.DefaultMountPoint
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NetlinkReader{procRoot: procRoot, logger: logger.WithComponent("socktable")}
}

type owner struct {
	pid  string
	comm string
}

// Snapshot dumps TCP and UDP IPv4 sockets and resolves their owners.
func (r *NetlinkReader) Snapshot(ctx context.Context) ([]Record, error) {
	owners, err := r.socketOwners()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tcp, err := netlink.SocketDiagTCP(unix.AF_INET)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "sock_diag tcp dump failed")
	}
	udp, err := netlink.SocketDiagUDP(unix.AF_INET)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "sock_diag udp dump failed")
	}

	var records []Record
	for _, s := range append(tcp, udp...) {
		o, ok := owners[s.INode]
		if !ok {
			continue
		}
		local, ok := toAddr(s.ID.Source)
		if !ok {
			continue
		}
		remote, ok := toAddr(s.ID.Destination)
		if !ok || remote.IsUnspecified() {
			continue
		}
		records = append(records, Record{PID: o.pid, Process: o.comm, Local: local, Remote: remote})
	}
	r.logger.Debug("Socket table snapshot", "records", len(records), "sockets", len(tcp)+len(udp))
	return records, nil
}

// socketOwners maps socket inodes to the lowest pid holding them.
func (r *NetlinkReader) socketOwners() (map[uint32]owner, error) {
	fs, err := procfs.NewFS(r.procRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "opening procfs")
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "listing processes")
	}

	owners := make(map[uint32]owner)
	for _, p := range procs {
		// Processes exit or deny access between listing and reading; skip them.
		targets, err := p.FileDescriptorTargets()
		if err != nil {
			continue
		}
		comm, err := p.Comm()
		if err != nil {
			continue
		}
		for _, t := range targets {
			inode, ok := socketInode(t)
			if !ok {
				continue
			}
			if _, seen := owners[inode]; !seen {
				owners[inode] = owner{pid: strconv.Itoa(p.PID), comm: comm}
			}
		}
	}
	return owners, nil
}

// socketInode parses an fd link target of the form "socket:[12345]".
func socketInode(target string) (uint32, bool) {
	s, ok := strings.CutPrefix(target, "socket:[")
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, "]")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func toAddr(ip net.IP) (netip.Addr, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(v4)), true
}
