// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/sphinx/internal/verdict"
)

// RegisterRoutes registers the status routes.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/verdicts", s.handleListVerdicts).Methods("GET")
	router.HandleFunc("/api/verdicts/{process}", s.handleProcessVerdicts).Methods("GET")
	router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// VerdictResponse is the JSON form of a cache entry.
type VerdictResponse struct {
	ID          string    `json:"id"`
	Process     string    `json:"process"`
	Destination string    `json:"destination"`
	Verdict     string    `json:"verdict"`
	DecidedAt   time.Time `json:"decided_at"`
	// Shadowed entries are never returned by a lookup.
	Shadowed bool `json:"shadowed,omitempty"`
}

// StatsResponse is returned by /api/stats.
type StatsResponse struct {
	PacketsSeen  uint64         `json:"packets_seen"`
	CacheEntries int            `json:"cache_entries"`
	Verdicts     map[string]int `json:"verdicts"`
	Uptime       string         `json:"uptime"`
}

func toResponses(entries []verdict.Entry) []VerdictResponse {
	type key struct {
		process string
		dst     string
	}
	seen := make(map[key]bool, len(entries))

	out := make([]VerdictResponse, 0, len(entries))
	for _, e := range entries {
		k := key{e.Process, e.Destination.String()}
		out = append(out, VerdictResponse{
			ID:          e.ID.String(),
			Process:     e.Process,
			Destination: e.Destination.String(),
			Verdict:     e.Verdict.String(),
			DecidedAt:   e.DecidedAt.UTC(),
			Shadowed:    seen[k],
		})
		seen[k] = true
	}
	return out
}

func (s *Server) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"verdicts": toResponses(s.verdicts.Entries()),
	})
}

func (s *Server) handleProcessVerdicts(w http.ResponseWriter, r *http.Request) {
	process := mux.Vars(r)["process"]
	if process == "" {
		respondWithError(w, http.StatusBadRequest, "Process name required")
		return
	}

	var matching []verdict.Entry
	for _, e := range s.verdicts.Entries() {
		if e.Process == process {
			matching = append(matching, e)
		}
	}
	if len(matching) == 0 {
		respondWithError(w, http.StatusNotFound, "No verdicts for process "+process)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"process":  process,
		"verdicts": toResponses(matching),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	entries := s.verdicts.Entries()
	counts := map[string]int{
		verdict.Accept.String(): 0,
		verdict.Drop.String():   0,
	}
	for _, e := range entries {
		counts[e.Verdict.String()]++
	}

	var seen uint64
	if s.packets != nil {
		seen = s.packets.Seen()
	}

	respondWithJSON(w, http.StatusOK, StatsResponse{
		PacketsSeen:  seen,
		CacheEntries: len(entries),
		Verdicts:     counts,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
	})
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
