// Package monitor implements the property monitor: the
// per-property driver that ingests a sample, ticks every configured
// property's incremental SAT core, detects verdict transitions, and emits
// evidence records. It owns the trace window and one satcore.Core per
// property exclusively — nothing outside Monitor.Ingest touches them.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/sentineld/plcwatch/internal/obsv"
	"github.com/sentineld/plcwatch/internal/satcore"
	"github.com/sentineld/plcwatch/internal/telemetry"
)

// tickPeriod is the nominal period between samples, used only to compute an
// evidence record's start_ts from its end_ts (a documented default of 5s).
const tickPeriod = 5 * time.Second

// EvidenceRecord is the canonical record emitted on a verdict transition.
type EvidenceRecord struct {
	PropertyID string
	StartTS    int64
	EndTS      int64
	TraceHash  string
	CertHash   string
	Verdict    string // "PASS" or "FAIL"
}

// PropertyState is the per-property state a SnapshotStore persists across
// restarts: the last known verdict and the last advisory unsat core.
type PropertyState struct {
	PreviousVerdict bool
	LastCore        []int
}

// SnapshotStore serves the monitor's restart-continuity requirement: no
// liveness claim across process restarts beyond re-reading durable state.
// Load's ok=false means no prior state exists; NewMonitor falls back to
// the documented all-true initial verdict.
type SnapshotStore interface {
	Save(ctx context.Context, propertyID string, state PropertyState) error
	Load(ctx context.Context, propertyID string) (state PropertyState, ok bool, err error)
}

type propertyTrack struct {
	prop            telemetry.Property
	id              string
	core            *satcore.Core
	previousVerdict bool
	lastCore        []int
}

// Monitor is the streaming property monitor: one trace window shared by all
// configured properties, one SAT core per property.
type Monitor struct {
	window  *telemetry.Window
	horizon int
	tracks  []*propertyTrack

	snapshot       SnapshotStore
	metrics        *obsv.Metrics
	tickTimeout    time.Duration
	clauseCapacity int
}

// Option configures optional Monitor collaborators.
type Option func(*Monitor)

// WithSnapshotStore wires restart-continuity persistence.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(m *Monitor) { m.snapshot = s }
}

// WithMetrics wires Prometheus counters; nil (the default) disables them.
func WithMetrics(metrics *obsv.Metrics) Option {
	return func(m *Monitor) { m.metrics = metrics }
}

// WithTickTimeout overrides the default 100ms solver timeout.
func WithTickTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.tickTimeout = d }
}

// WithClauseCapacity overrides each property's SAT core clause-window
// capacity (spec.md §3's `cap`). Defaults to the horizon when unset or
// non-positive, the MVP assumption that the encoder contributes at most
// one clause per property per tick.
func WithClauseCapacity(cap int) Option {
	return func(m *Monitor) { m.clauseCapacity = cap }
}

// NewMonitor constructs a monitor over props with the given horizon H.
// When a SnapshotStore is configured, each property's previous_verdict and
// last_core are hydrated from it.
func NewMonitor(ctx context.Context, props []telemetry.Property, horizon int, opts ...Option) *Monitor {
	m := &Monitor{
		window:      telemetry.NewWindow(horizon),
		horizon:     horizon,
		tickTimeout: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clauseCapacity <= 0 {
		m.clauseCapacity = horizon
	}

	for _, p := range props {
		id := telemetry.StableID(p)
		track := &propertyTrack{
			prop:            p,
			id:              id,
			core:            satcore.New(m.clauseCapacity),
			previousVerdict: true,
		}
		if m.snapshot != nil {
			if state, ok, err := m.snapshot.Load(ctx, id); err != nil {
				slog.Warn("monitor: snapshot load failed, using default verdict", "property_id", id, "error", err)
			} else if ok {
				track.previousVerdict = state.PreviousVerdict
				track.lastCore = state.LastCore
			}
		}
		m.tracks = append(m.tracks, track)
	}
	return m
}

// Ingest prepends sample into the window, then for each property computes
// delta -> unsat_recycle -> verdict -> transition-emit -> update
// previous_verdict/last_core.
func (m *Monitor) Ingest(ctx context.Context, ts int64, sample telemetry.Sample) []EvidenceRecord {
	m.window.Ingest(sample)

	var records []EvidenceRecord
	for _, track := range m.tracks {
		delta := telemetry.Delta(track.prop, m.window)

		tctx, cancel := context.WithTimeout(ctx, m.tickTimeout)
		result := track.core.UnsatRecycle(tctx, delta)
		cancel()

		verdict := result == satcore.Sat

		switch result {
		case satcore.Unknown:
			if m.metrics != nil {
				m.metrics.SolverUnknownTotal.Inc()
			}
			slog.Warn("monitor: solver returned unknown, treating as transient fail", "property_id", track.id)
		default:
			// Eval and the SAT core disagreeing should be impossible given the
			// encoder's soundness law.
			if verdict != telemetry.Eval(track.prop, m.window) {
				if m.metrics != nil {
					m.metrics.EvalDisagreementsTotal.Inc()
				}
				slog.Error("monitor: evaluator and SAT core disagree",
					"property_id", track.id, "eval", telemetry.Eval(track.prop, m.window), "sat_verdict", verdict)
			}
		}

		if verdict != track.previousVerdict {
			rec := EvidenceRecord{
				PropertyID: track.id,
				StartTS:    ts - int64(m.horizon)*int64(tickPeriod.Seconds()),
				EndTS:      ts,
				TraceHash:  telemetry.TraceHash(m.window),
				CertHash:   certHash(track.prop, m.window, result),
				Verdict:    verdictString(verdict),
			}
			records = append(records, rec)
			if m.metrics != nil {
				m.metrics.VerdictTransitionsTotal.Inc()
				m.metrics.EvidenceEmittedTotal.Inc()
			}
		}

		track.previousVerdict = verdict
		if !verdict {
			track.lastCore = track.core.GetUnsatCore()
		}

		if m.snapshot != nil {
			state := PropertyState{PreviousVerdict: track.previousVerdict, LastCore: track.lastCore}
			if err := m.snapshot.Save(ctx, track.id, state); err != nil {
				slog.Warn("monitor: snapshot save failed", "property_id", track.id, "error", err)
			}
		}
	}
	return records
}

// LastCore returns a copy of the advisory unsat core recorded on
// propertyID's most recent failing tick; it is kept after the property
// passes again. Returns nil for an unknown property and an empty slice for
// one that has never failed.
func (m *Monitor) LastCore(propertyID string) []int {
	for _, t := range m.tracks {
		if t.id == propertyID {
			out := make([]int, len(t.lastCore))
			copy(out, t.lastCore)
			return out
		}
	}
	return nil
}

func verdictString(v bool) string {
	if v {
		return "PASS"
	}
	return "FAIL"
}

// certHash is an MVP placeholder whose real definition is left to the
// security design — deterministic over the property, the window, and the
// solver result so identical inputs always reproduce it.
func certHash(p telemetry.Property, w *telemetry.Window, result satcore.Result) string {
	h := sha256.New()
	h.Write([]byte(telemetry.StableID(p)))
	h.Write([]byte(telemetry.TraceHash(w)))
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(result))
	h.Write(b[:])
	return hex.EncodeToString(h.Sum(nil))
}
