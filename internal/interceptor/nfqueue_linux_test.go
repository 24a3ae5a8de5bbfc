// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/testutil"
)

func TestQueueRun_BindFailsWithoutRoot(t *testing.T) {
	testutil.RequireUnprivileged(t)

	cfg := DefaultQueueConfig()
	cfg.Number = 4242
	q := NewQueue(cfg, New(nil, NewState(), 0, nil, testutil.QuietLogger()), testutil.QuietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := q.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.KindPermission, errors.GetKind(err))
	assert.Equal(t, uint16(4242), errors.GetAttributes(err)["queue"])
	assert.Equal(t, errors.ExitBind, errors.ExitCode(err))
}
