// Package operator implements the operator-facing HTTP surface: a
// gorilla/mux JSON API over recent evidence and advisory unsat cores,
// plus a gorilla/websocket live feed.
package operator

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sentineld/plcwatch/internal/monitor"
)

// CoreProvider exposes a monitor's advisory unsat cores without leaking its
// internal state.
type CoreProvider interface {
	LastCore(propertyID string) []int
}

// Server is the operator HTTP surface.
type Server struct {
	ring  *EvidenceRing
	cores CoreProvider
	hub   *Hub
	stats *statsCounters
}

// NewServer wires a Server over ring, cores, and hub. hub may be nil to
// disable the websocket stream endpoint.
func NewServer(ring *EvidenceRing, cores CoreProvider, hub *Hub) *Server {
	return &Server{ring: ring, cores: cores, hub: hub, stats: &statsCounters{}}
}

// RecordEvidence pushes a batch of newly emitted evidence records into the
// ring and, when a hub is configured, broadcasts them to live viewers. The
// monitor's main ingest loop calls this after each Ingest.
func (s *Server) RecordEvidence(records []monitor.EvidenceRecord) {
	for _, rec := range records {
		s.ring.Push(rec)
		s.stats.incEvidence(rec.Verdict)
		if s.hub != nil {
			s.hub.Publish(StreamEvent{Type: "verdict_transition", Data: rec})
		}
	}
}

// RecordBatchAnchored broadcasts a batch-anchored event to live viewers.
func (s *Server) RecordBatchAnchored(txhash string, root string) {
	s.stats.incBatchesAnchored()
	if s.hub != nil {
		s.hub.Publish(StreamEvent{Type: "batch_anchored", Data: map[string]string{"txhash": txhash, "root": root}})
	}
}

// Router builds the mux.Router exposing every operator route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/evidence", s.handleEvidence).Methods(http.MethodGet)
	r.HandleFunc("/v1/properties/{id}/core", s.handleCore).Methods(http.MethodGet)
	r.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	if s.hub != nil {
		r.HandleFunc("/v1/stream", s.hub.ServeWS)
	}
	return r
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	propertyID := q.Get("property_id")
	verdict := q.Get("verdict")

	var since int64
	if v := q.Get("since"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			since = parsed
		}
	}

	limit := 100
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records := s.ring.Query(propertyID, verdict, since, limit)
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	core := s.cores.LastCore(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"property_id": id,
		"unsat_core":  core,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
