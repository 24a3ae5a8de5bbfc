// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sphinx/internal/logging"
	"grimm.is/sphinx/internal/verdict"
)

type fixedCounter uint64

func (c fixedCounter) Seen() uint64 { return uint64(c) }

func newTestServer(t *testing.T, gatherer prometheus.Gatherer) (*Server, *verdict.Cache) {
	t.Helper()

	cache := verdict.NewCache()
	cache.Insert("firefox", netip.MustParseAddr("192.30.253.125"), verdict.Accept)
	cache.Insert("curl", netip.MustParseAddr("93.184.216.34"), verdict.Drop)
	cache.Insert("firefox", netip.MustParseAddr("192.30.253.125"), verdict.Drop)

	s := NewServer(ServerOptions{
		Verdicts: cache,
		Packets:  fixedCounter(42),
		Gatherer: gatherer,
		Logger:   logging.New(logging.Config{Level: logging.LevelError, Output: io.Discard}),
	})
	return s, cache
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListVerdicts(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/api/verdicts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Verdicts []VerdictResponse `json:"verdicts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Verdicts, 3)

	assert.Equal(t, "firefox", body.Verdicts[0].Process)
	assert.Equal(t, "accept", body.Verdicts[0].Verdict)
	assert.False(t, body.Verdicts[0].Shadowed)

	assert.Equal(t, "drop", body.Verdicts[2].Verdict)
	assert.True(t, body.Verdicts[2].Shadowed, "later entry for the same key is a shadow")
}

func TestProcessVerdicts(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := get(t, s, "/api/verdicts/curl")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Process  string            `json:"process"`
		Verdicts []VerdictResponse `json:"verdicts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "curl", body.Process)
	require.Len(t, body.Verdicts, 1)
	assert.Equal(t, "93.184.216.34", body.Verdicts[0].Destination)

	rec = get(t, s, "/api/verdicts/wget")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	s, cache := newTestServer(t, nil)
	cache.Insert("ssh", netip.MustParseAddr("10.0.0.1"), verdict.Accept)

	rec := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, uint64(42), stats.PacketsSeen)
	assert.Equal(t, 4, stats.CacheEntries)
	assert.Equal(t, 2, stats.Verdicts["accept"])
	assert.Equal(t, 2, stats.Verdicts["drop"])
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/verdicts", "/api/verdicts/curl", "/api/stats"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, path, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Contains(t, rec.Body.String(), "Method not allowed")
		})
	}

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/unknown").Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "sphinx_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	s, _ := newTestServer(t, reg)
	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sphinx_test_total 1")

	s, _ = newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/metrics").Code)
}

func TestShutdownBeforeServe(t *testing.T) {
	s, _ := newTestServer(t, nil)
	require.NoError(t, s.Shutdown(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve kept running after Shutdown")
	}

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err, "listener is closed")
}

func TestServeAndShutdown(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/api/stats"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(b), "packets_seen")
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}
