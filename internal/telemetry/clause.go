package telemetry

// Literal is a pair (var, negated). The variable here is the SAT
// back-end's Boolean variable index, not a TagVar; internal/satcore owns
// the mapping between the two.
type Literal struct {
	Var     int
	Negated bool
}

// Clause is a disjunction of literals; an empty clause denotes bottom (⊥).
type Clause []Literal

// Bottom returns the empty, unconditionally-false clause.
func Bottom() Clause {
	return Clause{}
}

// Delta is the clause encoder. It is deliberately
// sound-but-incomplete at the MVP tier: if Eval(p, w) holds, Delta returns
// no clauses; otherwise it returns a single empty clause. satcore replaces
// its clause window with each tick's delta, so the SAT core answers UNSAT
// for exactly the windows on which Eval(p, w) is false. A full
// Tseitin-style encoder is future work and must preserve this agreement
// law with Eval.
func Delta(p Property, w *Window) []Clause {
	if Eval(p, w) {
		return nil
	}
	return []Clause{Bottom()}
}
