package ldl

import "fmt"

// QueryValue is the monitor output lattice: a committed stable verdict or an
// unstable residual query whose verdict depends on the remaining trace.
// Ordering: StableValue(false) < any unstable value < StableValue(true).
type QueryValue struct {
	stable   bool
	verdict  bool
	residual Query
}

// StableValue commits to a final verdict.
func StableValue(verdict bool) QueryValue {
	return QueryValue{stable: true, verdict: verdict}
}

// UnstableValue defers the verdict to the residual query, which must hold
// from the next trace position onward.
func UnstableValue(residual Query) QueryValue {
	return QueryValue{residual: residual}
}

// IsStable reports whether the verdict is committed.
func (v QueryValue) IsStable() bool { return v.stable }

// Verdict returns the committed verdict. Only meaningful when stable.
func (v QueryValue) Verdict() bool { return v.verdict }

// Residual returns the pending residual query. Only meaningful when unstable.
func (v QueryValue) Residual() Query { return v.residual }

func (v QueryValue) String() string {
	if v.stable {
		return fmt.Sprintf("stable(%t)", v.verdict)
	}
	return "unstable(" + v.residual.Key() + ")"
}

// Meet is the lattice greatest lower bound.
func Meet(a, b QueryValue) QueryValue {
	switch {
	case a.stable && b.stable:
		return StableValue(a.verdict && b.verdict)
	case !a.stable && !b.stable:
		return UnstableValue(NewAnd(a.residual, b.residual))
	case a.stable:
		if a.verdict {
			return b
		}
		return StableValue(false)
	default:
		if b.verdict {
			return a
		}
		return StableValue(false)
	}
}

// Join is the lattice least upper bound.
func Join(a, b QueryValue) QueryValue {
	switch {
	case a.stable && b.stable:
		return StableValue(a.verdict || b.verdict)
	case !a.stable && !b.stable:
		return UnstableValue(NewOr(a.residual, b.residual))
	case a.stable:
		if a.verdict {
			return StableValue(true)
		}
		return b
	default:
		if b.verdict {
			return StableValue(true)
		}
		return a
	}
}

// Complement inverts a verdict: stable values flip, unstable residuals are
// negated in NNF.
func Complement(v QueryValue) QueryValue {
	if v.stable {
		return StableValue(!v.verdict)
	}
	return UnstableValue(Not(v.residual))
}
