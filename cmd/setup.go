// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"grimm.is/sphinx/internal/config"
	"grimm.is/sphinx/internal/firewall"
	"grimm.is/sphinx/internal/logging"
)

// RunSetup installs the nftables rules that feed the queue. With dryRun the
// equivalent nft script is printed instead.
func RunSetup(cfg *config.Config, logger *logging.Logger, dryRun bool) error {
	queue := uint16(cfg.Queue.Number)
	if dryRun {
		Printer.Printf("%s", firewall.Script(cfg.Firewall.Table, queue))
		return nil
	}

	inst, err := firewall.NewInstaller(cfg.Firewall.Table, queue, logger.WithComponent("firewall"))
	if err != nil {
		return err
	}
	if err := inst.Install(); err != nil {
		return err
	}
	Printer.Printf("Outbound IPv4 traffic now goes to queue %d (table %s).\n", queue, cfg.Firewall.Table)
	return nil
}

// RunTeardown removes the nftables rules installed by RunSetup.
func RunTeardown(cfg *config.Config, logger *logging.Logger) error {
	inst, err := firewall.NewInstaller(cfg.Firewall.Table, uint16(cfg.Queue.Number), logger.WithComponent("firewall"))
	if err != nil {
		return err
	}
	return inst.Remove()
}
