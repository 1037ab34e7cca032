// Package satcore implements the incremental SAT core: a
// bounded sliding clause window backed by a real SAT engine, answering
// Sat/Unsat/Unknown and exposing an advisory minimal unsat core.
//
// The clause window and the solver state are one coupled resource —
// satcore.Core owns both and re-synchronizes the solver from the window on
// every tick using the "reset and reassert" strategy, an alternative to
// incremental push/pop with assumption literals. Reset-and-reassert means
// exactly that: every tick, the window
// is replaced by the delta the caller passes in, not accumulated on top of
// it. The delta the monitor hands us is always the FULL clause set for the
// property's current trace window (telemetry.Delta already folds in every
// sample still inside the horizon), so re-deriving from it discards no
// information — it is the reset-and-reassert analog of the assumption-
// literal strategy, which would instead tag each sample's clause with its
// own assumption and retract it the instant that sample falls out of the
// horizon. Both strategies must agree on every verdict; keeping
// the window itself authoritative rather than append-only is what makes
// that true, since an append-only FIFO would keep a stale violation alive
// long after the sample that caused it left the trace window. cap still
// bounds the clause count accepted per tick, for a future richer encoder
// that emits more than one clause per property per tick.
package satcore

import (
	"context"
	"sync"

	"github.com/crillab/gophersat/solver"

	"github.com/sentineld/plcwatch/internal/telemetry"
)

// Result is the incremental core's verdict for the current clause window.
type Result int

const (
	Sat Result = iota
	Unsat
	Unknown
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Core is one property's incremental SAT back-end, sized to a fixed clause
// capacity.
type Core struct {
	mu sync.Mutex

	cap    int
	window []telemetry.Clause // the current tick's clauses, oldest at index 0

	// vars grows monotonically; a variable index is stable for the life
	// of the core once assigned.
	nextVar int

	lastResult Result
	lastCore   []int // indices into window, valid only after an Unsat result
}

// New constructs a Core with the given clause-window capacity.
func New(cap int) *Core {
	if cap < 1 {
		cap = 1
	}
	return &Core{cap: cap, lastResult: Sat}
}

// AllocVar returns a fresh, stable Boolean-variable index. Callers (the
// clause encoder's caller) use this to mint variables for new tag
// predicates; once minted an index is never reused.
func (c *Core) AllocVar() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextVar++
	return c.nextVar
}

// UnsatRecycle replaces the clause window with delta (truncating to the
// newest cap clauses if delta itself exceeds capacity), re-synchronizes the
// solver, and runs the decision procedure under ctx's deadline (the caller
// enforces the default 100ms budget via context.WithTimeout). A context
// deadline or solver-internal error both fold to Unknown — satcore never
// propagates a panic or crashes the monitor.
func (c *Core) UnsatRecycle(ctx context.Context, delta []telemetry.Clause) Result {
	c.mu.Lock()
	c.window = delta
	if over := len(c.window) - c.cap; over > 0 {
		c.window = c.window[over:]
	}
	snapshot := make([]telemetry.Clause, len(c.window))
	copy(snapshot, c.window)
	c.mu.Unlock()

	result, core := solveSnapshot(ctx, snapshot)

	c.mu.Lock()
	c.lastResult = result
	c.lastCore = core
	c.mu.Unlock()

	return result
}

// GetUnsatCore returns the indices (into the clause window, oldest = 0) of
// a minimal unsatisfiable subset from the last UnsatRecycle call. Empty
// when the last result was not Unsat.
func (c *Core) GetUnsatCore() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastResult != Unsat {
		return nil
	}
	out := make([]int, len(c.lastCore))
	copy(out, c.lastCore)
	return out
}

// solveSnapshot builds a gophersat CNF from the clause window and runs it,
// bounded by ctx, then (only on Unsat) derives an advisory minimal core by
// deletion-based search over the window itself. Running the (blocking)
// solver call on a goroutine is the only way to honor a context deadline
// against a library with no native cancellation; a timed-out goroutine is
// abandoned to finish on its own — acceptable because clause windows here
// are tiny and the cap keeps the problem size bounded regardless of how
// many ticks have passed.
func solveSnapshot(ctx context.Context, window []telemetry.Clause) (Result, []int) {
	if len(window) == 0 {
		return Sat, nil
	}

	result := runSolver(ctx, window)
	if result != Unsat {
		return result, nil
	}
	return Unsat, minimalCore(ctx, window)
}

// runSolver runs gophersat's incremental Solver — not Problem, which
// exposes no Solve method — over window's CNF translation and folds a
// timeout or solver-internal error to Unknown.
func runSolver(ctx context.Context, window []telemetry.Clause) Result {
	done := make(chan Result, 1)

	go func() {
		pb, err := solver.ParseSlice(toDimacs(window))
		if err != nil {
			done <- Unknown
			return
		}
		switch solver.New(pb).Solve() {
		case solver.Sat:
			done <- Sat
		case solver.Unsat:
			done <- Unsat
		default:
			done <- Unknown
		}
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return Unknown
	}
}

// minimalCore derives an advisory minimal unsatisfiable subset of window by
// deletion-based search: repeatedly drop one clause at a time and keep the
// drop whenever the remainder is still Unsat, until no further clause can
// be removed. This needs nothing beyond runSolver, so it is agnostic to
// whichever MUS/failed-assumptions API a given gophersat version exposes.
// The result is a minimal (not necessarily minimum) unsat core, which is
// all the monitor's advisory display requires.
func minimalCore(ctx context.Context, window []telemetry.Clause) []int {
	indices := make([]int, len(window))
	for i := range indices {
		indices[i] = i
	}

	for {
		removed := false
		for i := range indices {
			if len(indices) == 1 {
				break
			}
			trial := make([]int, 0, len(indices)-1)
			trial = append(trial, indices[:i]...)
			trial = append(trial, indices[i+1:]...)

			trialClauses := make([]telemetry.Clause, len(trial))
			for j, idx := range trial {
				trialClauses[j] = window[idx]
			}

			if runSolver(ctx, trialClauses) == Unsat {
				indices = trial
				removed = true
				break
			}
		}
		if !removed {
			return indices
		}
	}
}

// toDimacs converts the clause window into gophersat's [][]int literal
// form: a positive integer is the corresponding variable, negative its
// negation. An empty internal clause (bottom) becomes two contradictory
// unit clauses over one pinned variable (pinnedVar asserted both ways),
// a contradiction local to this conversion only.
func toDimacs(window []telemetry.Clause) [][]int {
	const pinnedVar = 1 << 30 // far outside any real tag-predicate variable
	cnf := make([][]int, 0, len(window)*2)
	for _, clause := range window {
		if len(clause) == 0 {
			cnf = append(cnf, []int{pinnedVar}, []int{-pinnedVar})
			continue
		}
		lits := make([]int, 0, len(clause))
		for _, lit := range clause {
			if lit.Negated {
				lits = append(lits, -lit.Var)
			} else {
				lits = append(lits, lit.Var)
			}
		}
		cnf = append(cnf, lits)
	}
	return cnf
}
