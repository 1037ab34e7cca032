package monitor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineld/plcwatch/internal/telemetry"
)

// Scenario 1: steady pass emits nothing.
func TestMonitorSteadyPassEmitsNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, []telemetry.Property{telemetry.Le(telemetry.Pressure, 120)}, 3)

	var all []EvidenceRecord
	all = append(all, m.Ingest(ctx, 1, telemetry.Sample{telemetry.Pressure: 100})...)
	all = append(all, m.Ingest(ctx, 2, telemetry.Sample{telemetry.Pressure: 110})...)
	all = append(all, m.Ingest(ctx, 3, telemetry.Sample{telemetry.Pressure: 115})...)

	assert.Empty(t, all)
}

// Scenario 2: transition to fail, then recover.
func TestMonitorTransitionToFailThenRecover(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, []telemetry.Property{telemetry.Le(telemetry.Pressure, 120)}, 3)

	var all []EvidenceRecord
	all = append(all, m.Ingest(ctx, 1, telemetry.Sample{telemetry.Pressure: 100})...)
	all = append(all, m.Ingest(ctx, 2, telemetry.Sample{telemetry.Pressure: 130})...)
	all = append(all, m.Ingest(ctx, 3, telemetry.Sample{telemetry.Pressure: 100})...)

	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].EndTS)
	assert.Equal(t, "FAIL", all[0].Verdict)
	assert.Equal(t, int64(3), all[1].EndTS)
	assert.Equal(t, "PASS", all[1].Verdict)
}

// Scenario 3: rate-bound violation.
func TestMonitorRateBoundFail(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, []telemetry.Property{telemetry.RateBound(telemetry.Flow, 5)}, 2)

	var all []EvidenceRecord
	all = append(all, m.Ingest(ctx, 1, telemetry.Sample{telemetry.Flow: 10})...)
	all = append(all, m.Ingest(ctx, 2, telemetry.Sample{telemetry.Flow: 20})...)

	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].EndTS)
	assert.Equal(t, "FAIL", all[0].Verdict)
}

// Transition-only emission invariant: between two consecutive
// emitted records the internal verdict never repeats.
func TestMonitorNoRepeatedVerdictEmitted(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, []telemetry.Property{telemetry.Le(telemetry.Pressure, 120)}, 3)

	m.Ingest(ctx, 1, telemetry.Sample{telemetry.Pressure: 130})
	recs := m.Ingest(ctx, 2, telemetry.Sample{telemetry.Pressure: 130})

	assert.Empty(t, recs, "second consecutive FAIL tick must not re-emit")
}

// last_core is populated on failure and surfaced for operator display.
func TestMonitorLastCorePopulatedOnFailure(t *testing.T) {
	ctx := context.Background()
	prop := telemetry.Le(telemetry.Pressure, 120)
	m := NewMonitor(ctx, []telemetry.Property{prop}, 3)

	m.Ingest(ctx, 1, telemetry.Sample{telemetry.Pressure: 130})

	assert.NotEmpty(t, m.LastCore(telemetry.StableID(prop)))
}

type memorySnapshotStore struct {
	states map[string]PropertyState
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{states: make(map[string]PropertyState)}
}

func (s *memorySnapshotStore) Save(_ context.Context, propertyID string, state PropertyState) error {
	s.states[propertyID] = state
	return nil
}

func (s *memorySnapshotStore) Load(_ context.Context, propertyID string) (PropertyState, bool, error) {
	state, ok := s.states[propertyID]
	return state, ok, nil
}

// Restart continuity: a monitor constructed against a store holding a prior
// FAIL verdict must not re-emit FAIL on the first tick that still fails.
func TestMonitorHydratesFromSnapshotStore(t *testing.T) {
	ctx := context.Background()
	prop := telemetry.Le(telemetry.Pressure, 120)
	store := newMemorySnapshotStore()
	store.states[telemetry.StableID(prop)] = PropertyState{PreviousVerdict: false}

	m := NewMonitor(ctx, []telemetry.Property{prop}, 3, WithSnapshotStore(store))
	recs := m.Ingest(ctx, 1, telemetry.Sample{telemetry.Pressure: 130})

	assert.Empty(t, recs, "verdict unchanged from hydrated state must not emit")
}
