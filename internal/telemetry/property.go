package telemetry

// Property is a recursive algebraic structure over tag variables. Only the
// field group commented with a given Kind is meaningful for it; the
// Go idiom here favors a tagged struct over an interface hierarchy so the
// zero value is inert and the type is trivially hashable/serializable for
// StableID.
type Kind uint8

const (
	KindLe Kind = iota
	KindRateBound
	KindAnd
	KindOr
	// KindTemporal is reserved: a temporal combinator over the window,
	// nominally "evaluate pointwise, reduce across the window", but the
	// current core treats it as the Boolean projection of its
	// sub-formula and flags it future work — see Eval's KindTemporal
	// case below.
	KindTemporal
)

type Property struct {
	Kind Kind

	// Le, RateBound
	Var   TagVar
	Bound float64

	// And, Or, Temporal (sub-formula)
	Left  *Property
	Right *Property
}

// Le builds a Le(v, k) property: the newest sample satisfies v <= k.
func Le(v TagVar, k float64) Property {
	return Property{Kind: KindLe, Var: v, Bound: k}
}

// RateBound builds a RateBound(v, k) property: |sample0(v) - sample1(v)| <= k.
func RateBound(v TagVar, k float64) Property {
	return Property{Kind: KindRateBound, Var: v, Bound: k}
}

// And builds the conjunction of a and b.
func And(a, b Property) Property {
	return Property{Kind: KindAnd, Left: &a, Right: &b}
}

// Or builds the disjunction of a and b.
func Or(a, b Property) Property {
	return Property{Kind: KindOr, Left: &a, Right: &b}
}

// Temporal wraps sub as a reserved temporal combinator (future work).
func Temporal(sub Property) Property {
	return Property{Kind: KindTemporal, Left: &sub}
}

// Eval is the total, pure Boolean evaluator. It is defined for
// every window including the empty one and is the ground truth any clause
// encoder must agree with on every (p, window) pair.
func Eval(p Property, w *Window) bool {
	switch p.Kind {
	case KindLe:
		if w.Len() == 0 {
			return true
		}
		return w.At(0).Get(p.Var) <= p.Bound

	case KindRateBound:
		if w.Len() < 2 {
			return true
		}
		delta := w.At(0).Get(p.Var) - w.At(1).Get(p.Var)
		if delta < 0 {
			delta = -delta
		}
		return delta <= p.Bound

	case KindAnd:
		return Eval(*p.Left, w) && Eval(*p.Right, w)

	case KindOr:
		return Eval(*p.Left, w) || Eval(*p.Right, w)

	case KindTemporal:
		// Future work: reduce pointwise across the window.
		// Current core evaluates only the Boolean projection of the
		// sub-formula against the same window.
		return Eval(*p.Left, w)

	default:
		return true
	}
}
