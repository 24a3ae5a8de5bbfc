// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package socktable

import (
	"net/netip"
	"strings"
)

const (
	pidMarker     = "pid="
	processMarker = `(("`
)

// ParseLine extracts a Record from one line of `ss -nap -A inet` output.
// Lines missing the pid, the process name, or a local/remote IPv4 pair
// report false; that is the normal outcome for headers, listeners and IPv6 rows.
func ParseLine(line string) (Record, bool) {
	pid, ok := parsePID(line)
	if !ok {
		return Record{}, false
	}
	local, remote, ok := parseAddresses(line)
	if !ok {
		return Record{}, false
	}
	process, ok := parseProcess(line)
	if !ok {
		return Record{}, false
	}
	return Record{PID: pid, Process: process, Local: local, Remote: remote}, true
}

// parsePID returns the digits after the first "pid=" marker that has any.
func parsePID(line string) (string, bool) {
	rest := line
	for {
		i := strings.Index(rest, pidMarker)
		if i < 0 {
			return "", false
		}
		rest = rest[i+len(pidMarker):]
		n := leadingDigits(rest)
		if n > 0 {
			return rest[:n], true
		}
	}
}

// parseProcess returns the quoted name following the first `(("` marker.
func parseProcess(line string) (string, bool) {
	i := strings.Index(line, processMarker)
	if i < 0 {
		return "", false
	}
	rest := line[i+len(processMarker):]
	end := strings.IndexByte(rest, '"')
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

// parseAddresses returns the first two fields shaped like <ipv4>:<port>.
func parseAddresses(line string) (netip.Addr, netip.Addr, bool) {
	var found [2]netip.Addr
	n := 0
	for _, field := range strings.Fields(line) {
		addr, ok := parseEndpoint(field)
		if !ok {
			continue
		}
		found[n] = addr
		n++
		if n == len(found) {
			return found[0], found[1], true
		}
	}
	return netip.Addr{}, netip.Addr{}, false
}

// parseEndpoint accepts "a.b.c.d:port" and "a.b.c.d%iface:port".
// Wildcard ports ("*") and bracketed IPv6 hosts are rejected.
func parseEndpoint(field string) (netip.Addr, bool) {
	i := strings.LastIndexByte(field, ':')
	if i <= 0 {
		return netip.Addr{}, false
	}
	port := field[i+1:]
	if port == "" || leadingDigits(port) != len(port) {
		return netip.Addr{}, false
	}
	host := field[:i]
	if j := strings.IndexByte(host, '%'); j >= 0 {
		host = host[:j]
	}
	return ParseIPv4(host)
}

// ParseIPv4 parses a strict dotted-decimal IPv4 address: four octets of
// 0-255, no leading zeros, nothing else. IPv6 and IPv4-mapped forms fail.
func ParseIPv4(s string) (netip.Addr, bool) {
	var octets [4]byte
	for i := 0; i < 4; i++ {
		if i > 0 {
			if s == "" || s[0] != '.' {
				return netip.Addr{}, false
			}
			s = s[1:]
		}
		n := leadingDigits(s)
		if n == 0 || n > 3 || (n > 1 && s[0] == '0') {
			return netip.Addr{}, false
		}
		v := 0
		for _, c := range s[:n] {
			v = v*10 + int(c-'0')
		}
		if v > 255 {
			return netip.Addr{}, false
		}
		octets[i] = byte(v)
		s = s[n:]
	}
	if s != "" {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4(octets), true
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
