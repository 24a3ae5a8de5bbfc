// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"grimm.is/sphinx/internal/api"
	"grimm.is/sphinx/internal/config"
	"grimm.is/sphinx/internal/decision"
	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/firewall"
	"grimm.is/sphinx/internal/geoip"
	"grimm.is/sphinx/internal/interceptor"
	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/metrics"
	"grimm.is/sphinx/internal/prompt"
	"grimm.is/sphinx/internal/socktable"
	"grimm.is/sphinx/internal/verdict"
)

// BindFailedMessage is printed when the queue cannot be bound.
const BindFailedMessage = "[ERR] Creating bind failed. Do you run this as root? Exiting"

// IsBindError reports whether err came from opening or binding the queue.
func IsBindError(err error) bool {
	if errors.GetKind(err) != errors.KindPermission {
		return false
	}
	_, ok := errors.GetAttributes(err)["queue"]
	return ok
}

// NewReader returns the socket table reader selected by cfg.
func NewReader(cfg *config.Config, logger *logging.Logger) socktable.Reader {
	if cfg.Snapshot.Source == config.SourceNetlink {
		return socktable.NewNetlinkReader(cfg.Snapshot.ProcRoot, logger)
	}
	return socktable.NewSSReader(cfg.Snapshot.Command, cfg.Snapshot.Args, logger)
}

// QueueConfig converts the queue block.
func QueueConfig(cfg *config.Config) interceptor.QueueConfig {
	qc := interceptor.DefaultQueueConfig()
	qc.Number = uint16(cfg.Queue.Number)
	qc.MaxPacketLen = uint32(cfg.Queue.MaxPacketLen)
	qc.MaxQueueLen = uint32(cfg.Queue.MaxQueueLen)
	return qc
}

// RunSphinx runs the interactive firewall until ctx is cancelled or a fatal
// error occurs.
func RunSphinx(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	Printer.Println(Banner)

	if err := SetProcessName("sphinx"); err != nil {
		logger.Debug("Failed to set process name", "error", err)
	}

	unmatched, err := verdict.Parse(cfg.Policy.Unmatched)
	if err != nil {
		return errors.Wrap(err, errors.KindValidation, "policy.unmatched")
	}

	prompter, err := prompt.New(cfg.Prompt.Style, cfg.Prompt.Affirmative, os.Stdin, os.Stdout)
	if err != nil {
		return errors.Wrap(err, errors.KindValidation, "prompt.style")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		return errors.Wrap(err, errors.KindInternal, "registering metrics")
	}

	opts := []decision.Option{decision.WithObserver(m)}
	if cfg.Prompt.GeoIPDB != "" {
		ann, err := geoip.Open(cfg.Prompt.GeoIPDB, logger.WithComponent("geoip"))
		if err != nil {
			return err
		}
		defer ann.Close()
		opts = append(opts, decision.WithAnnotator(ann))
	}

	state := interceptor.NewState()
	engine := decision.NewEngine(NewReader(cfg, logger), state.Cache, prompter, logger, opts...)
	handler := interceptor.New(engine, state, unmatched, m, logger)
	queue := interceptor.NewQueue(QueueConfig(cfg), handler, logger)

	if cfg.Firewall.InstallRules {
		inst, err := firewall.NewInstaller(cfg.Firewall.Table, uint16(cfg.Queue.Number), logger.WithComponent("firewall"))
		if err != nil {
			return err
		}
		if err := inst.Install(); err != nil {
			return err
		}
		defer func() {
			if err := inst.Remove(); err != nil {
				logger.Warn("Failed to remove queue rules", "error", err)
			}
		}()
	}

	if cfg.API.Listen != "" {
		srv := api.NewServer(api.ServerOptions{
			Verdicts: state.Cache,
			Packets:  state,
			Gatherer: reg,
			Logger:   logger.WithComponent("api"),
		})
		go func() {
			if err := srv.Start(cfg.API.Listen); err != nil {
				logger.Error("API server failed", "addr", cfg.API.Listen, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	err = queue.Run(ctx)
	logger.Info("Stopped", "packets", state.Seen(), "decisions", state.Cache.Len())
	return err
}
