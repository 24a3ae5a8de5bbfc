// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package socktable

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"unicode/utf8"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// DefaultCommand and DefaultArgs list all internet sockets with their owners.
var (
	DefaultCommand = "ss"
	DefaultArgs    = []string{"-nap", "-A", "inet"}
)

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// SSReader builds snapshots from the output of the ss utility.
type SSReader struct {
	command string
	args    []string
	run     CommandRunner
	logger  *logging.Logger
}

// NewSSReader creates a reader for command/args. Empty values fall back to
// DefaultCommand and DefaultArgs.
func NewSSReader(command string, args []string, logger *logging.Logger) *SSReader {
	if command == "" {
		command = DefaultCommand
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SSReader{
		command: command,
		args:    args,
		run:     execRunner,
		logger:  logger.WithComponent("socktable"),
	}
}

// WithRunner replaces the command runner.
func (r *SSReader) WithRunner(run CommandRunner) *SSReader {
	r.run = run
	return r
}

// Snapshot runs the command and parses its output. Failing to run the command
// or receiving non-UTF-8 output is a KindUnavailable error.
func (r *SSReader) Snapshot(ctx context.Context) ([]Record, error) {
	out, err := r.run(ctx, r.command, r.args...)
	if err != nil {
		err = errors.Wrapf(err, errors.KindUnavailable,
			"failed to execute `%s`. Is the program installed on your system?", r.command)
		return nil, errors.Attr(err, "command", r.command+" "+strings.Join(r.args, " "))
	}
	if !utf8.Valid(out) {
		return nil, errors.Errorf(errors.KindUnavailable, "`%s` produced non UTF-8 output", r.command)
	}

	records, err := Parse(bytes.NewReader(out))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "reading socket table")
	}
	r.logger.Debug("Socket table snapshot", "records", len(records), "bytes", len(out))
	return records, nil
}

// Parse reads ss output line by line and keeps the lines that form a Record.
func Parse(rd io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if rec, ok := ParseLine(scanner.Text()); ok {
			records = append(records, rec)
		}
	}
	return records, scanner.Err()
}
