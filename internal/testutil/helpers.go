// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"os"
	"testing"

	"grimm.is/sphinx/internal/logging"
)

// PrivilegedEnv enables tests that change the host's netfilter state.
const PrivilegedEnv = "SPHINX_PRIV_TEST"

// RequirePrivileged skips the test unless PrivilegedEnv is set and the test
// runs as root. Such tests touch real nftables tables and queues, so they
// belong in a disposable VM or network namespace.
func RequirePrivileged(t *testing.T) {
	t.Helper()
	if os.Getenv(PrivilegedEnv) == "" {
		t.Skip("Skipping test: requires " + PrivilegedEnv + " environment")
	}
	if os.Geteuid() != 0 {
		t.Skip("Skipping test: requires root")
	}
}

// RequireUnprivileged skips the test when running as root.
func RequireUnprivileged(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("Skipping test: must not run as root")
	}
}

// QuietLogger returns a logger that discards everything below error.
func QuietLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError, Output: io.Discard})
}
