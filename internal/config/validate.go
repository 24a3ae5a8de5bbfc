// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"fmt"
	"net"
	"strings"

	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/verdict"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks a config that already had defaults applied.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Queue.Number < 0 || c.Queue.Number > 0xffff {
		add("queue.number", "must be between 0 and 65535, got %d", c.Queue.Number)
	}
	if c.Queue.MaxPacketLen < 20 || c.Queue.MaxPacketLen > 0xffff {
		add("queue.max_packet_len", "must be between 20 and 65535, got %d", c.Queue.MaxPacketLen)
	}
	if c.Queue.MaxQueueLen < 1 {
		add("queue.max_queue_len", "must be positive, got %d", c.Queue.MaxQueueLen)
	}

	switch c.Snapshot.Source {
	case SourceSS, SourceNetlink:
	default:
		add("snapshot.source", "unknown source %q (want ss or netlink)", c.Snapshot.Source)
	}

	if _, err := verdict.Parse(c.Policy.Unmatched); err != nil {
		add("policy.unmatched", "%v", err)
	}

	switch c.Prompt.Style {
	case "line", "form", "auto":
	default:
		add("prompt.style", "unknown style %q (want line, form or auto)", c.Prompt.Style)
	}
	if strings.ContainsAny(c.Prompt.Affirmative, " \t\r\n") {
		add("prompt.affirmative", "must not contain whitespace")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON, logging.FormatLogfmt:
	default:
		add("log.format", "unknown format %q (want text, json or logfmt)", c.Log.Format)
	}

	if c.API.Listen != "" {
		if _, _, err := net.SplitHostPort(c.API.Listen); err != nil {
			add("api.listen", "%v", err)
		}
	}

	if c.Firewall.Table == "" {
		add("firewall.table", "must not be empty")
	}
	return errs
}
