// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/sphinx/internal/verdict"
)

// Verdict sources
const (
	SourceCache   = "cache"
	SourcePrompt  = "prompt"
	SourceDefault = "default"
)

// Metrics holds the Prometheus metrics for the packet path
type Metrics struct {
	PacketsSeen    prometheus.Counter
	PacketsIgnored prometheus.Counter
	Correlations   *prometheus.CounterVec
	Verdicts       *prometheus.CounterVec
	Prompts        prometheus.Counter
	CacheEntries   prometheus.Gauge
	SnapshotErrors prometheus.Counter
}

// NewMetrics creates the metric set. Nothing is registered until Register.
func NewMetrics() *Metrics {
	return &Metrics{
		PacketsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sphinx_packets_seen_total",
			Help: "Total number of packets delivered by the queue",
		}),
		PacketsIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sphinx_packets_ignored_total",
			Help: "Packets without a decodable IPv4 header; no verdict is issued for them",
		}),
		Correlations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sphinx_correlations_total",
			Help: "Socket table lookups by result",
		}, []string{"result"}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sphinx_verdicts_total",
			Help: "Verdicts applied by verdict and source",
		}, []string{"verdict", "source"}),
		Prompts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sphinx_prompts_total",
			Help: "Interactive decisions requested",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sphinx_verdict_cache_entries",
			Help: "Entries in the verdict cache",
		}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sphinx_snapshot_errors_total",
			Help: "Socket table snapshots that failed",
		}),
	}
}

// Register registers every metric with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.PacketsSeen,
		m.PacketsIgnored,
		m.Correlations,
		m.Verdicts,
		m.Prompts,
		m.CacheEntries,
		m.SnapshotErrors,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Correlated records the result of a socket table lookup.
func (m *Metrics) Correlated(matched bool) {
	result := "unmatched"
	if matched {
		result = "matched"
	}
	m.Correlations.WithLabelValues(result).Inc()
}

// Resolved records a verdict from the decision engine. Prompted verdicts
// are also new cache entries.
func (m *Metrics) Resolved(v verdict.Verdict, prompted bool) {
	source := SourceCache
	if prompted {
		source = SourcePrompt
		m.Prompts.Inc()
		m.CacheEntries.Inc()
	}
	m.Verdicts.WithLabelValues(v.String(), source).Inc()
}

// Defaulted records the configured verdict applied to an uncorrelated packet.
func (m *Metrics) Defaulted(v verdict.Verdict) {
	m.Verdicts.WithLabelValues(v.String(), SourceDefault).Inc()
}
