// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package interceptor

import (
	"context"

	"github.com/florianl/go-nfqueue/v2"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// Queue binds an Interceptor to a netfilter queue.
type Queue struct {
	cfg     QueueConfig
	handler *Interceptor
	logger  *logging.Logger
}

// NewQueue creates a queue reader for cfg.
func NewQueue(cfg QueueConfig, handler *Interceptor, logger *logging.Logger) *Queue {
	if logger == nil {
		logger = logging.Default()
	}
	return &Queue{cfg: cfg, handler: handler, logger: logger.WithComponent("nfqueue")}
}

// Run binds the queue for AF_INET and processes packets until ctx is done or
// the handler fails. go-nfqueue drops any existing binding before binding.
// Open and bind failures are KindPermission errors carrying a "queue" attribute.
//
// The hook runs on a single goroutine; while the decision engine waits for
// an answer no packets are read and the kernel buffers them.
func (q *Queue) Run(ctx context.Context) error {
	nf, err := nfqueue.Open(&nfqueue.Config{
		NfQueue:      q.cfg.Number,
		MaxPacketLen: q.cfg.MaxPacketLen,
		MaxQueueLen:  q.cfg.MaxQueueLen,
		Copymode:     nfqueue.NfQnlCopyPacket,
		AfFamily:     unix.AF_INET,
		WriteTimeout: q.cfg.WriteTimeout,
	})
	if err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindPermission, "opening nfqueue"), "queue", q.cfg.Number)
	}
	defer nf.Close()

	// Packets pile up while a prompt is open; do not turn that into receive errors.
	if err := nf.SetOption(netlink.NoENOBUFS, true); err != nil {
		q.logger.Warn("Failed to disable ENOBUFS", "error", err)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	hook := func(a nfqueue.Attribute) int {
		if a.PacketID == nil {
			return 0
		}
		var payload []byte
		if a.Payload != nil {
			payload = *a.Payload
		}

		action, err := q.handler.Handle(ctx, payload)
		if err != nil {
			cancel(err)
			return 1
		}

		switch action {
		case ActionAccept:
			err = nf.SetVerdict(*a.PacketID, nfqueue.NfAccept)
		case ActionDrop:
			err = nf.SetVerdict(*a.PacketID, nfqueue.NfDrop)
		}
		if err != nil {
			q.logger.Warn("Failed to set verdict", "id", *a.PacketID, "action", action, "error", err)
		}
		return 0
	}

	errFn := func(e error) int {
		var opErr *netlink.OpError
		if errors.As(e, &opErr) && (opErr.Timeout() || opErr.Temporary()) {
			return 0
		}
		cancel(errors.Wrap(e, errors.KindUnavailable, "nfqueue receive failed"))
		return 1
	}

	if err := nf.RegisterWithErrorFunc(ctx, hook, errFn); err != nil {
		return errors.Attr(errors.Wrapf(err, errors.KindPermission, "binding nfqueue %d", q.cfg.Number), "queue", q.cfg.Number)
	}
	q.logger.Info("Listening on netfilter queue", "queue", q.cfg.Number)

	<-ctx.Done()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}
