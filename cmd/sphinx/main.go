// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command sphinx asks before any local process talks to a new IPv4 host.
//
// Outbound packets arrive on a netfilter queue; each one is matched to its
// owning process and the operator allows or denies the (process, host) pair
// once. Run as root with traffic routed to the queue, e.g. via `sphinx setup`.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/sphinx/cmd"
	"grimm.is/sphinx/internal/errors"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sphinx [flags] [command]

Commands:
  run        watch the queue and prompt for new connections (default)
  setup      install nftables rules that feed the queue
  teardown   remove those rules
  check      validate the configuration

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configFile := flag.String("config", "", "Path to HCL or JSON config file")
	queue := flag.Int("queue", -1, "Netfilter queue number (overrides queue.number)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	dryRun := flag.Bool("dry-run", false, "setup: print the nft script instead of applying it")
	flag.Usage = usage
	flag.Parse()

	subcmd := "run"
	if flag.NArg() > 0 {
		subcmd = flag.Arg(0)
	}

	opts := cmd.Options{ConfigFile: *configFile, Queue: *queue, LogLevel: *logLevel}
	os.Exit(exitCode(run(subcmd, opts, *dryRun)))
}

func run(subcmd string, opts cmd.Options, dryRun bool) error {
	if subcmd == "check" {
		return cmd.RunConfigCheck(opts)
	}

	cfg, err := cmd.LoadConfig(opts)
	if err != nil {
		return err
	}
	logger := cmd.NewLogger(cfg)

	switch subcmd {
	case "run":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cmd.RunSphinx(ctx, cfg, logger)
	case "setup":
		return cmd.RunSetup(cfg, logger, dryRun)
	case "teardown":
		return cmd.RunTeardown(cfg, logger)
	default:
		usage()
		return errors.Errorf(errors.KindValidation, "unknown command %q", subcmd)
	}
}

func exitCode(err error) int {
	if err == nil {
		return errors.ExitOK
	}
	if cmd.IsBindError(err) {
		fmt.Fprintln(os.Stderr, cmd.BindFailedMessage)
	} else {
		fmt.Fprintf(os.Stderr, "[ERR] %v\n", err)
	}
	return errors.ExitCode(err)
}
