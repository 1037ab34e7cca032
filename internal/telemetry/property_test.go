package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalLeEmptyWindow(t *testing.T) {
	w := NewWindow(3)
	assert.True(t, Eval(Le(Pressure, 120), w))
}

func TestEvalRateBoundSingleSample(t *testing.T) {
	w := NewWindow(2)
	w.Ingest(Sample{Flow: 10})
	assert.True(t, Eval(RateBound(Flow, 5), w))
}

func TestEvalLeSteadyPass(t *testing.T) {
	w := NewWindow(3)
	prop := Le(Pressure, 120)
	for _, v := range []float64{100, 110, 115} {
		w.Ingest(Sample{Pressure: v})
		assert.True(t, Eval(prop, w))
	}
}

func TestEvalLeTransitionToFail(t *testing.T) {
	w := NewWindow(3)
	prop := Le(Pressure, 120)

	w.Ingest(Sample{Pressure: 100})
	assert.True(t, Eval(prop, w))

	w.Ingest(Sample{Pressure: 130})
	assert.False(t, Eval(prop, w))

	w.Ingest(Sample{Pressure: 100})
	assert.True(t, Eval(prop, w))
}

func TestEvalRateBoundFail(t *testing.T) {
	w := NewWindow(2)
	w.Ingest(Sample{Flow: 10})
	w.Ingest(Sample{Flow: 20}) // newest first -> At(0)=20, At(1)=10

	assert.False(t, Eval(RateBound(Flow, 5), w))
}

func TestEvalAndOr(t *testing.T) {
	w := NewWindow(1)
	w.Ingest(Sample{Pressure: 50, Temperature: 200})

	assert.True(t, Eval(And(Le(Pressure, 100), Le(Pressure, 60)), w))
	assert.False(t, Eval(And(Le(Pressure, 100), Le(Temperature, 100)), w))
	assert.True(t, Eval(Or(Le(Temperature, 100), Le(Pressure, 60)), w))
}

func TestDeltaSoundness(t *testing.T) {
	w := NewWindow(3)
	prop := Le(Pressure, 120)

	w.Ingest(Sample{Pressure: 100})
	assert.Empty(t, Delta(prop, w))

	w.Ingest(Sample{Pressure: 130})
	deltas := Delta(prop, w)
	assert.Len(t, deltas, 1)
	assert.Empty(t, deltas[0]) // bottom clause
}

func TestStableIDDeterministic(t *testing.T) {
	a := And(Le(Pressure, 120), RateBound(Flow, 5))
	b := And(Le(Pressure, 120), RateBound(Flow, 5))
	c := And(Le(Pressure, 121), RateBound(Flow, 5))

	assert.Equal(t, StableID(a), StableID(b))
	assert.NotEqual(t, StableID(a), StableID(c))
}

func TestTraceHashDeterministicOrdering(t *testing.T) {
	w1 := NewWindow(2)
	w1.Ingest(Sample{Pressure: 1, Temperature: 2})

	w2 := NewWindow(2)
	// Same logical sample, map built in a different literal order —
	// Go map iteration order is randomized, so this exercises SortedTags.
	w2.Ingest(Sample{Temperature: 2, Pressure: 1})

	assert.Equal(t, TraceHash(w1), TraceHash(w2))
}

func TestTraceHashMissingTagDiffersFromExplicitZero(t *testing.T) {
	w := NewWindow(1)
	w.Ingest(Sample{Pressure: 0})
	// A sample with an explicit zero and one with the tag entirely absent
	// hash differently because SortedTags only iterates present keys —
	// this documents the "missing tag evaluates as zero in Eval, but is
	// simply absent from the hash input" distinction.
	w2 := NewWindow(1)
	w2.Ingest(Sample{})
	assert.NotEqual(t, TraceHash(w), TraceHash(w2))
}
