// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package decision correlates intercepted packets with the process that owns
// the connection and resolves a verdict for them: from the cache when the
// (process, destination) pair was decided before, otherwise by asking.
package decision

import (
	"context"
	"net/netip"

	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/prompt"
	"grimm.is/sphinx/internal/socktable"
	"grimm.is/sphinx/internal/verdict"
)

// Packet holds the addresses taken from an intercepted IPv4 header.
type Packet struct {
	Source      netip.Addr
	Destination netip.Addr
}

// Outcome is the result of Decide. Matched is false when no live connection
// owns the packet's address pair; Verdict is meaningless in that case.
type Outcome struct {
	Matched  bool
	Verdict  verdict.Verdict
	Record   socktable.Record
	Prompted bool
}

// Prompter asks the operator about a connection.
type Prompter interface {
	Confirm(ctx context.Context, req prompt.Request) (bool, error)
}

// Annotator adds an optional country code to prompts.
type Annotator interface {
	Country(addr netip.Addr) string
}

// Observer receives decision events, e.g. for metrics.
type Observer interface {
	Correlated(matched bool)
	Resolved(v verdict.Verdict, prompted bool)
}

// Engine resolves verdicts. It is not safe for concurrent Decide calls: the
// packet queue delivers packets one at a time and the prompt blocks in between.
type Engine struct {
	reader    socktable.Reader
	cache     *verdict.Cache
	prompter  Prompter
	annotator Annotator
	observer  Observer
	logger    *logging.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithAnnotator sets the destination annotator used in prompts.
func WithAnnotator(a Annotator) Option {
	return func(e *Engine) { e.annotator = a }
}

// WithObserver sets the decision observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine over reader, cache and prompter.
func NewEngine(reader socktable.Reader, cache *verdict.Cache, prompter Prompter, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		reader:   reader,
		cache:    cache,
		prompter: prompter,
		logger:   logger.WithComponent("decision"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide takes a fresh socket snapshot, finds the record whose local and
// remote addresses equal the packet's source and destination, and returns the
// cached verdict for (process, destination) or prompts for one.
//
// A snapshot failure is returned as is; the caller treats it as fatal.
func (e *Engine) Decide(ctx context.Context, pkt Packet) (Outcome, error) {
	records, err := e.reader.Snapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}

	rec, ok := Correlate(records, pkt)
	if e.observer != nil {
		e.observer.Correlated(ok)
	}
	if !ok {
		e.logger.Debug("No owning process", "src", pkt.Source, "dst", pkt.Destination)
		return Outcome{}, nil
	}

	if v, ok := e.cache.Lookup(rec.Process, pkt.Destination); ok {
		e.resolved(v, false)
		return Outcome{Matched: true, Verdict: v, Record: rec}, nil
	}

	v := e.ask(ctx, rec, pkt)
	entry := e.cache.Insert(rec.Process, pkt.Destination, v)
	e.logger.Info("Decision recorded",
		"id", entry.ID,
		"process", rec.Process,
		"pid", rec.PID,
		"dst", pkt.Destination,
		"verdict", v)
	e.resolved(v, true)
	return Outcome{Matched: true, Verdict: v, Record: rec, Prompted: true}, nil
}

// ask blocks on the prompter. Any answer other than yes, including a failed
// read, becomes Drop.
func (e *Engine) ask(ctx context.Context, rec socktable.Record, pkt Packet) verdict.Verdict {
	req := prompt.Request{
		Process:     rec.Process,
		PID:         rec.PID,
		Source:      pkt.Source,
		Destination: pkt.Destination,
	}
	if e.annotator != nil {
		req.Country = e.annotator.Country(pkt.Destination)
	}

	allow, err := e.prompter.Confirm(ctx, req)
	if err != nil {
		e.logger.Warn("Prompt failed, dropping", "process", rec.Process, "dst", pkt.Destination, "error", err)
		return verdict.Drop
	}
	if allow {
		return verdict.Accept
	}
	return verdict.Drop
}

func (e *Engine) resolved(v verdict.Verdict, prompted bool) {
	if e.observer != nil {
		e.observer.Resolved(v, prompted)
	}
}

// Correlate returns the first record with Local == pkt.Source and
// Remote == pkt.Destination. Reversed pairs do not match.
func Correlate(records []socktable.Record, pkt Packet) (socktable.Record, bool) {
	for _, r := range records {
		if r.Local == pkt.Source && r.Remote == pkt.Destination {
			return r, true
		}
	}
	return socktable.Record{}, false
}
