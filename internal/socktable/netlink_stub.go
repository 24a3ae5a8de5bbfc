// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package socktable

import (
	"context"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// NetlinkReader is a stub for non-Linux systems.
type NetlinkReader struct{}

// NewNetlinkReader creates a stub reader.
func NewNetlinkReader(procRoot string, logger *logging.Logger) *NetlinkReader {
	return &NetlinkReader{}
}

// Snapshot always fails on non-Linux systems.
func (r *NetlinkReader) Snapshot(ctx context.Context) ([]Record, error) {
	return nil, errors.New(errors.KindUnavailable, "sock_diag snapshots are only supported on Linux")
}
