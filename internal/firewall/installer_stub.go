// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux
// +build !linux

package firewall

import (
	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// Installer is unavailable off Linux.
type Installer struct{}

// NewInstaller always fails off Linux.
func NewInstaller(table string, queue uint16, logger *logging.Logger) (*Installer, error) {
	return nil, errors.New(errors.KindUnavailable, "nftables requires linux")
}

func (i *Installer) Install() error {
	return errors.New(errors.KindUnavailable, "nftables requires linux")
}

func (i *Installer) Remove() error {
	return errors.New(errors.KindUnavailable, "nftables requires linux")
}
