// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sphinx/internal/verdict"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))

	// A second registration of the same collectors must fail.
	assert.Error(t, m.Register(reg))
}

func TestMetrics_Observer(t *testing.T) {
	m := NewMetrics()

	m.Correlated(true)
	m.Correlated(true)
	m.Correlated(false)
	m.Resolved(verdict.Accept, true)
	m.Resolved(verdict.Accept, false)
	m.Resolved(verdict.Drop, true)
	m.Defaulted(verdict.Accept)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Correlations.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Correlations.WithLabelValues("unmatched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Prompts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("accept", SourcePrompt)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("accept", SourceCache)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("drop", SourcePrompt)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("accept", SourceDefault)))
}
