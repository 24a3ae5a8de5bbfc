// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package interceptor receives queued packets from the kernel, asks the
// decision engine about each one and turns the answer into a queue verdict.
package interceptor

import (
	"context"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"grimm.is/sphinx/internal/decision"
	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/metrics"
	"grimm.is/sphinx/internal/verdict"
)

// Action is what the queue does with a packet.
type Action int

const (
	// ActionNone issues no verdict; the kernel keeps holding the packet.
	ActionNone Action = iota
	// ActionAccept releases the packet.
	ActionAccept
	// ActionDrop discards the packet.
	ActionDrop
)

func (a Action) String() string {
	switch a {
	case ActionAccept:
		return "accept"
	case ActionDrop:
		return "drop"
	default:
		return "none"
	}
}

func actionFor(v verdict.Verdict) Action {
	if v == verdict.Accept {
		return ActionAccept
	}
	return ActionDrop
}

// QueueConfig configures the kernel queue binding.
type QueueConfig struct {
	Number       uint16
	MaxPacketLen uint32
	MaxQueueLen  uint32
	WriteTimeout time.Duration
}

// DefaultQueueConfig returns queue 0 copying whole packets.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Number:       0,
		MaxPacketLen: 0xffff,
		MaxQueueLen:  1024,
		WriteTimeout: 15 * time.Millisecond,
	}
}

// State is the long-lived mutable state of the packet callback: the verdict
// cache and the count of packets seen. One State is built at startup and
// lives until the process exits.
type State struct {
	Cache *verdict.Cache
	seen  atomic.Uint64
}

// NewState creates a State with an empty cache.
func NewState() *State {
	return &State{Cache: verdict.NewCache()}
}

// Seen returns the number of packets delivered so far.
func (s *State) Seen() uint64 {
	return s.seen.Load()
}

// Decider resolves a verdict for a packet.
type Decider interface {
	Decide(ctx context.Context, pkt decision.Packet) (decision.Outcome, error)
}

// Interceptor maps packet payloads to actions.
type Interceptor struct {
	decider   Decider
	state     *State
	unmatched verdict.Verdict
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// New creates an interceptor. unmatched is applied to packets that no live
// connection owns.
func New(decider Decider, state *State, unmatched verdict.Verdict, m *metrics.Metrics, logger *logging.Logger) *Interceptor {
	if m == nil {
		m = metrics.NewMetrics()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Interceptor{
		decider:   decider,
		state:     state,
		unmatched: unmatched,
		metrics:   m,
		logger:    logger.WithComponent("interceptor"),
	}
}

// Handle processes one packet payload. Payloads without an IPv4 header yield
// ActionNone. An error means the decision engine cannot work at all.
func (i *Interceptor) Handle(ctx context.Context, payload []byte) (Action, error) {
	n := i.state.seen.Add(1)
	i.metrics.PacketsSeen.Inc()

	pkt, ok := DecodeIPv4(payload)
	if !ok {
		i.metrics.PacketsIgnored.Inc()
		i.logger.Debug("Ignoring non-IPv4 payload", "packet", n, "len", len(payload))
		return ActionNone, nil
	}
	i.logger.Debug("Intercepted", "packet", n, "src", pkt.Source, "dst", pkt.Destination)

	out, err := i.decider.Decide(ctx, pkt)
	if err != nil {
		i.metrics.SnapshotErrors.Inc()
		return ActionNone, err
	}
	if !out.Matched {
		i.metrics.Defaulted(i.unmatched)
		return actionFor(i.unmatched), nil
	}
	return actionFor(out.Verdict), nil
}

// DecodeIPv4 reads the source and destination of an IPv4 header.
func DecodeIPv4(payload []byte) (decision.Packet, bool) {
	var ip4 layers.IPv4
	if err := ip4.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		return decision.Packet{}, false
	}
	if ip4.Version != 4 {
		return decision.Packet{}, false
	}
	src, ok := netip.AddrFromSlice(ip4.SrcIP.To4())
	if !ok {
		return decision.Packet{}, false
	}
	dst, ok := netip.AddrFromSlice(ip4.DstIP.To4())
	if !ok {
		return decision.Packet{}, false
	}
	return decision.Packet{Source: src, Destination: dst}, true
}
