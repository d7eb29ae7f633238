// Package eval implements the one-step semantic unwinding of queries against
// a single trace position.
package eval

import "github.com/tiger/exercise-trace-monitor/internal/ldl"

// Evaluate consumes one trace position: given the residual query, the ground
// facts holding at the current position, and whether this is the final
// position, it returns the new query value. An unstable result carries the
// residual that must hold from the next position onward.
func Evaluate(q ldl.Query, facts ldl.FactSet, last bool) ldl.QueryValue {
	s := &stepState{facts: facts, last: last, unrolled: make(map[string]bool)}
	return s.eval(q)
}

// stepState carries the position under evaluation plus the repeats already
// unrolled on the current descent. A repeat whose body mixes tests with steps
// can reach itself again without consuming a step; unrolled breaks that cycle.
type stepState struct {
	facts    ldl.FactSet
	last     bool
	unrolled map[string]bool
}

func (s *stepState) eval(q ldl.Query) ldl.QueryValue {
	switch query := q.(type) {
	case ldl.TT:
		return ldl.StableValue(true)
	case ldl.FF:
		return ldl.StableValue(false)
	case ldl.Formula:
		return ldl.StableValue(query.Prop.Holds(s.facts))
	case ldl.And:
		out := ldl.StableValue(true)
		for i := len(query.Queries) - 1; i >= 0; i-- {
			out = ldl.Meet(s.eval(query.Queries[i]), out)
		}
		return out
	case ldl.Or:
		out := ldl.StableValue(false)
		for i := len(query.Queries) - 1; i >= 0; i-- {
			out = ldl.Join(s.eval(query.Queries[i]), out)
		}
		return out
	case ldl.Exists:
		return s.exists(query.Path, query.Query)
	case ldl.All:
		return s.all(query.Path, query.Query)
	default:
		return ldl.StableValue(false)
	}
}

func (s *stepState) exists(path ldl.Path, body ldl.Query) ldl.QueryValue {
	switch p := path.(type) {
	case ldl.AssertFact:
		if s.last {
			// No further step to consume.
			return ldl.StableValue(false)
		}
		if p.Prop.Holds(s.facts) {
			return ldl.UnstableValue(body)
		}
		return ldl.StableValue(false)
	case ldl.Test:
		return ldl.Meet(s.eval(p.Query), s.eval(body))
	case ldl.Choice:
		out := ldl.StableValue(false)
		for i := len(p.Paths) - 1; i >= 0; i-- {
			out = ldl.Join(s.exists(p.Paths[i], body), out)
		}
		return out
	case ldl.Sequence:
		return s.exists(p.Paths[0], nestExists(p.Paths[1:], body))
	case ldl.Repeat:
		if ldl.TestOnly(p.Body) {
			// A non-consuming body makes one fixed-point iteration sufficient.
			return s.eval(body)
		}
		key := "e|" + p.Key() + "|" + body.Key()
		if s.unrolled[key] {
			// Reached through test branches without consuming a step: further
			// unrolling cannot add anything, collapse to zero iterations.
			return s.eval(body)
		}
		s.unrolled[key] = true
		again := s.exists(p.Body, ldl.Exists{Path: p, Query: body})
		delete(s.unrolled, key)
		return ldl.Join(s.eval(body), again)
	default:
		return ldl.StableValue(false)
	}
}

func (s *stepState) all(path ldl.Path, body ldl.Query) ldl.QueryValue {
	switch p := path.(type) {
	case ldl.AssertFact:
		if s.last {
			// No further step exists; the path obligation holds vacuously.
			return ldl.StableValue(true)
		}
		if p.Prop.Holds(s.facts) {
			return ldl.UnstableValue(body)
		}
		return ldl.StableValue(true)
	case ldl.Test:
		return ldl.Join(s.eval(ldl.Not(p.Query)), s.eval(body))
	case ldl.Choice:
		out := ldl.StableValue(true)
		for i := len(p.Paths) - 1; i >= 0; i-- {
			out = ldl.Meet(s.all(p.Paths[i], body), out)
		}
		return out
	case ldl.Sequence:
		return s.all(p.Paths[0], nestAll(p.Paths[1:], body))
	case ldl.Repeat:
		if ldl.TestOnly(p.Body) {
			return s.eval(body)
		}
		key := "a|" + p.Key() + "|" + body.Key()
		if s.unrolled[key] {
			return s.eval(body)
		}
		s.unrolled[key] = true
		again := s.all(p.Body, ldl.All{Path: p, Query: body})
		delete(s.unrolled, key)
		return ldl.Meet(s.eval(body), again)
	default:
		return ldl.StableValue(true)
	}
}

func nestExists(paths []ldl.Path, body ldl.Query) ldl.Query {
	out := body
	for i := len(paths) - 1; i >= 0; i-- {
		out = ldl.Exists{Path: paths[i], Query: out}
	}
	return out
}

func nestAll(paths []ldl.Path, body ldl.Query) ldl.Query {
	out := body
	for i := len(paths) - 1; i >= 0; i-- {
		out = ldl.All{Path: paths[i], Query: out}
	}
	return out
}
