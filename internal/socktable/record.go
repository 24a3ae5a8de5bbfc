// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package socktable reads the live socket table and reports which process owns
// each IPv4 connection. Every Snapshot call queries the system again; records
// from different snapshots must not be compared.
package socktable

import (
	"context"
	"net/netip"
)

// Record is one socket with its owning process, as seen at snapshot time.
type Record struct {
	PID     string     `json:"pid"`
	Process string     `json:"process"`
	Local   netip.Addr `json:"local"`
	Remote  netip.Addr `json:"remote"`
}

// Reader produces a fresh view of the socket table.
type Reader interface {
	Snapshot(ctx context.Context) ([]Record, error)
}
