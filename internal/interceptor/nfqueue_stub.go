// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux

package interceptor

import (
	"context"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// Queue is a stub for non-Linux systems.
type Queue struct {
	cfg QueueConfig
}

// NewQueue creates a stub queue.
func NewQueue(cfg QueueConfig, handler *Interceptor, logger *logging.Logger) *Queue {
	return &Queue{cfg: cfg}
}

// Run returns an error on non-Linux systems.
func (q *Queue) Run(ctx context.Context) error {
	return errors.Attr(errors.New(errors.KindPermission, "nfqueue is only supported on Linux"), "queue", q.cfg.Number)
}
