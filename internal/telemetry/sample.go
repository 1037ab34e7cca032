// Package telemetry implements the pure data model and Boolean semantics
// for safety properties over a sliding window of controller samples.
// Nothing in this package blocks or allocates a solver — it is the ground
// truth that internal/satcore and internal/monitor build on.
package telemetry

import "fmt"

// TagVar is a tag variable: an enumerated identifier drawn from a small
// closed set, stable as a map key and as a hash input byte.
type TagVar uint8

const (
	Pressure TagVar = iota
	Temperature
	Flow
	Valve

	tagVarCount // sentinel, not a real tag
)

func (t TagVar) String() string {
	switch t {
	case Pressure:
		return "pressure"
	case Temperature:
		return "temperature"
	case Flow:
		return "flow"
	case Valve:
		return "valve"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// ParseTagVar maps a JSON tag name to its ordinal. Unknown names are
// reported via ok=false so the caller can ignore them.
func ParseTagVar(name string) (TagVar, bool) {
	for t := TagVar(0); t < tagVarCount; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Sample is a mapping from tag variable to a real-valued scalar. A tag
// absent from the map evaluates as zero in the Boolean layer — a
// documented design choice, not a bug.
type Sample map[TagVar]float64

// Get returns the sample's value for v, or 0 if v is missing.
func (s Sample) Get(v TagVar) float64 {
	return s[v]
}

// SortedTags returns the tags present in s in ascending ordinal order, the
// deterministic iteration order required for hash-input canonicalization.
func (s Sample) SortedTags() []TagVar {
	tags := make([]TagVar, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	for i := 1; i < len(tags); i++ {
		for j := i; j > 0 && tags[j-1] > tags[j]; j-- {
			tags[j-1], tags[j] = tags[j], tags[j-1]
		}
	}
	return tags
}

// Window is the trace window: an ordered sequence of samples, newest
// first, bounded at Horizon. Created empty at monitor start;
// each Ingest prepends and evicts the oldest once len(samples) > Horizon.
type Window struct {
	Horizon int
	samples []Sample
}

// NewWindow creates an empty trace window with the given horizon H.
func NewWindow(horizon int) *Window {
	if horizon < 1 {
		horizon = 1
	}
	return &Window{Horizon: horizon}
}

// Ingest prepends sample, newest first, evicting the oldest entry once the
// window exceeds its horizon.
func (w *Window) Ingest(sample Sample) {
	w.samples = append([]Sample{sample}, w.samples...)
	if len(w.samples) > w.Horizon {
		w.samples = w.samples[:w.Horizon]
	}
}

// Len reports the number of samples currently held.
func (w *Window) Len() int {
	return len(w.samples)
}

// At returns the i-th newest sample (0 = newest). Panics if i is out of
// range — callers only index within Len().
func (w *Window) At(i int) Sample {
	return w.samples[i]
}

// Samples returns the window's samples, newest first. The slice is shared
// with the window's internal storage and must be treated read-only.
func (w *Window) Samples() []Sample {
	return w.samples
}
