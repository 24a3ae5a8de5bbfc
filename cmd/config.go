// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"grimm.is/sphinx/internal/config"
	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// Options are the command line settings shared by all subcommands.
type Options struct {
	ConfigFile string
	// Queue overrides queue.number when >= 0.
	Queue int
	// LogLevel overrides log.level when set.
	LogLevel string
}

// LoadConfig reads the config file, or the defaults when none is given, and
// applies command line overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	var cfg *config.Config
	if opts.ConfigFile == "" {
		cfg = config.DefaultConfig()
	} else {
		var err error
		cfg, err = config.LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
	}

	if opts.Queue >= 0 {
		cfg.Queue.Number = opts.Queue
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, errors.Wrap(errs, errors.KindValidation, "invalid configuration")
	}
	return cfg, nil
}

// NewLogger builds the process logger from cfg and makes it the default.
func NewLogger(cfg *config.Config) *logging.Logger {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(cfg.Log.Level); err == nil {
		lc.Level = level
	}
	lc.Format = cfg.Log.Format
	lc.File = cfg.Log.File

	logger := logging.New(lc)
	logging.SetDefault(logger)
	return logger
}

// RunConfigCheck loads and validates the configuration and prints the result.
func RunConfigCheck(opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			Printer.Printf("Configuration invalid, %d errors:\n", len(verrs))
			for _, v := range verrs {
				Printer.Printf("  - %s\n", v.Error())
			}
		}
		return err
	}

	source := opts.ConfigFile
	if source == "" {
		source = "built-in defaults"
	}
	Printer.Printf("Configuration OK (%s)\n", source)
	Printer.Printf("  queue:     %d\n", cfg.Queue.Number)
	Printer.Printf("  snapshot:  %s\n", cfg.Snapshot.Source)
	Printer.Printf("  unmatched: %s\n", cfg.Policy.Unmatched)
	Printer.Printf("  prompt:    %s\n", cfg.Prompt.Style)
	if cfg.API.Listen != "" {
		Printer.Printf("  api:       %s\n", cfg.API.Listen)
	}
	return nil
}
