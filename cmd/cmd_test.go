// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sphinx/internal/config"
	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/socktable"
)

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(Options{Queue: 4, LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Queue.Number)
	assert.Equal(t, "debug", cfg.Log.Level)

	cfg, err = LoadConfig(Options{Queue: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Queue.Number, "negative queue keeps the configured value")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(Options{Queue: 70000})
	require.Error(t, err)
	assert.Equal(t, errors.ExitConfig, errors.ExitCode(err))

	_, err = LoadConfig(Options{Queue: -1, LogLevel: "loud"})
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
}

func TestRunConfigCheck(t *testing.T) {
	var buf bytes.Buffer
	old := Printer
	Printer = NewPrinter(&buf)
	t.Cleanup(func() { Printer = old })

	path := filepath.Join(t.TempDir(), "sphinx.hcl")
	require.NoError(t, os.WriteFile(path, []byte("policy {\n  unmatched = \"drop\"\n}\n"), 0o600))

	require.NoError(t, RunConfigCheck(Options{ConfigFile: path, Queue: -1}))
	assert.Contains(t, buf.String(), "Configuration OK")
	assert.Contains(t, buf.String(), "unmatched: drop")

	buf.Reset()
	require.Error(t, RunConfigCheck(Options{Queue: -1, LogLevel: "loud"}))
	assert.Contains(t, buf.String(), "log.level")
}

func TestIsBindError(t *testing.T) {
	bind := errors.Attr(errors.New(errors.KindPermission, "binding nfqueue 0"), "queue", uint16(0))
	assert.True(t, IsBindError(bind))

	nft := errors.Attr(errors.New(errors.KindPermission, "failed to install queue rules"), "table", "sphinx")
	assert.False(t, IsBindError(nft))

	assert.False(t, IsBindError(errors.New(errors.KindUnavailable, "ss failed")))
	assert.Equal(t, 1, errors.ExitCode(bind))
}

func TestNewReader(t *testing.T) {
	cfg := config.DefaultConfig()
	logger := NewLogger(cfg)

	_, ok := NewReader(cfg, logger).(*socktable.SSReader)
	assert.True(t, ok)

	cfg.Snapshot.Source = config.SourceNetlink
	_, ok = NewReader(cfg, logger).(*socktable.NetlinkReader)
	assert.True(t, ok)
}

func TestQueueConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Queue.Number = 9
	qc := QueueConfig(cfg)
	assert.Equal(t, uint16(9), qc.Number)
	assert.Equal(t, uint32(0xffff), qc.MaxPacketLen)
	assert.Equal(t, uint32(1024), qc.MaxQueueLen)
}

func TestRunSetup_DryRun(t *testing.T) {
	var buf bytes.Buffer
	old := Printer
	Printer = NewPrinter(&buf)
	t.Cleanup(func() { Printer = old })

	cfg := config.DefaultConfig()
	cfg.Queue.Number = 2
	require.NoError(t, RunSetup(cfg, NewLogger(cfg), true))
	assert.Contains(t, buf.String(), "queue num 2 bypass")
}
