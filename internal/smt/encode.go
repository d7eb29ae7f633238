package smt

import (
	"fmt"
	"strings"

	"github.com/tiger/exercise-trace-monitor/internal/ldl"
)

// encoder renders the bounded finite-trace semantics of a query as one
// SMT-LIB assertion over Boolean constants. Each ground fact at each trace
// position becomes one nullary uninterpreted predicate keyed by the fact's
// structural key and the position. truncated records that a step was cut off
// at the bound itself: traces of length 1..bound are then encoded exactly,
// but longer traces could still change the answer, so an unsat verdict over
// the sweep is inconclusive.
type encoder struct {
	atoms     map[string]string
	decls     []string
	bound     int
	truncated bool
}

func newEncoder(bound int) *encoder {
	return &encoder{atoms: make(map[string]string), bound: bound}
}

// encodeSatScript renders a (push)…(check-sat)…(pop) script asserting that
// some trace of length 1..bound satisfies q, and reports whether the
// encoding was truncated at the bound. Returns ErrBoundExceeded when a
// repeat cannot be unrolled within the bound.
func encodeSatScript(q ldl.Query, bound int) (string, bool, error) {
	e := newEncoder(bound)
	parts := make([]string, 0, bound)
	for length := 1; length <= bound; length++ {
		part, err := e.query(q, 0, length, bound)
		if err != nil {
			return "", false, err
		}
		parts = append(parts, part)
	}
	var b strings.Builder
	b.WriteString("(push)\n")
	for _, decl := range e.decls {
		fmt.Fprintf(&b, "(declare-const %s Bool)\n", decl)
	}
	fmt.Fprintf(&b, "(assert %s)\n", orAll(parts))
	b.WriteString("(check-sat)\n(pop)\n")
	return b.String(), e.truncated, nil
}

// query encodes q at position t of a trace with length positions. fuel bounds
// repeat unrolling; it decrements on each unroll so non-consuming iterations
// cannot loop.
func (e *encoder) query(q ldl.Query, t, length, fuel int) (string, error) {
	switch query := q.(type) {
	case ldl.TT:
		return "true", nil
	case ldl.FF:
		return "false", nil
	case ldl.Formula:
		return e.prop(query.Prop, t), nil
	case ldl.And:
		parts, err := e.queries(query.Queries, t, length, fuel)
		if err != nil {
			return "", err
		}
		return andAll(parts), nil
	case ldl.Or:
		parts, err := e.queries(query.Queries, t, length, fuel)
		if err != nil {
			return "", err
		}
		return orAll(parts), nil
	case ldl.Exists:
		return e.exists(query.Path, query.Query, t, length, fuel)
	case ldl.All:
		return e.all(query.Path, query.Query, t, length, fuel)
	default:
		return "", fmt.Errorf("unsupported query node %T", q)
	}
}

func (e *encoder) exists(path ldl.Path, body ldl.Query, t, length, fuel int) (string, error) {
	switch p := path.(type) {
	case ldl.AssertFact:
		if t+1 >= length {
			// A cut at a shorter length is covered by the longer unrollings;
			// a cut at the bound itself leaves longer traces unexplored.
			if length == e.bound {
				e.truncated = true
			}
			return "false", nil
		}
		next, err := e.query(body, t+1, length, fuel)
		if err != nil {
			return "", err
		}
		return andAll([]string{e.prop(p.Prop, t), next}), nil
	case ldl.Test:
		test, err := e.query(p.Query, t, length, fuel)
		if err != nil {
			return "", err
		}
		rest, err := e.query(body, t, length, fuel)
		if err != nil {
			return "", err
		}
		return andAll([]string{test, rest}), nil
	case ldl.Choice:
		parts := make([]string, 0, len(p.Paths))
		for _, branch := range p.Paths {
			part, err := e.exists(branch, body, t, length, fuel)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return orAll(parts), nil
	case ldl.Sequence:
		nested := body
		for i := len(p.Paths) - 1; i >= 1; i-- {
			nested = ldl.Exists{Path: p.Paths[i], Query: nested}
		}
		return e.exists(p.Paths[0], nested, t, length, fuel)
	case ldl.Repeat:
		if ldl.TestOnly(p.Body) {
			return e.query(body, t, length, fuel)
		}
		if fuel <= 0 {
			return "", fmt.Errorf("%w: repeat %s", ErrBoundExceeded, p.Key())
		}
		stop, err := e.query(body, t, length, fuel)
		if err != nil {
			return "", err
		}
		again, err := e.exists(p.Body, ldl.Exists{Path: p, Query: body}, t, length, fuel-1)
		if err != nil {
			return "", err
		}
		return orAll([]string{stop, again}), nil
	default:
		return "", fmt.Errorf("unsupported path node %T", path)
	}
}

func (e *encoder) all(path ldl.Path, body ldl.Query, t, length, fuel int) (string, error) {
	switch p := path.(type) {
	case ldl.AssertFact:
		if t+1 >= length {
			if length == e.bound {
				e.truncated = true
			}
			return "true", nil
		}
		next, err := e.query(body, t+1, length, fuel)
		if err != nil {
			return "", err
		}
		return orAll([]string{not(e.prop(p.Prop, t)), next}), nil
	case ldl.Test:
		test, err := e.query(p.Query, t, length, fuel)
		if err != nil {
			return "", err
		}
		rest, err := e.query(body, t, length, fuel)
		if err != nil {
			return "", err
		}
		return orAll([]string{not(test), rest}), nil
	case ldl.Choice:
		parts := make([]string, 0, len(p.Paths))
		for _, branch := range p.Paths {
			part, err := e.all(branch, body, t, length, fuel)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return andAll(parts), nil
	case ldl.Sequence:
		nested := body
		for i := len(p.Paths) - 1; i >= 1; i-- {
			nested = ldl.All{Path: p.Paths[i], Query: nested}
		}
		return e.all(p.Paths[0], nested, t, length, fuel)
	case ldl.Repeat:
		if ldl.TestOnly(p.Body) {
			return e.query(body, t, length, fuel)
		}
		if fuel <= 0 {
			return "", fmt.Errorf("%w: repeat %s", ErrBoundExceeded, p.Key())
		}
		stop, err := e.query(body, t, length, fuel)
		if err != nil {
			return "", err
		}
		again, err := e.all(p.Body, ldl.All{Path: p, Query: body}, t, length, fuel-1)
		if err != nil {
			return "", err
		}
		return andAll([]string{stop, again}), nil
	default:
		return "", fmt.Errorf("unsupported path node %T", path)
	}
}

func (e *encoder) queries(queries []ldl.Query, t, length, fuel int) ([]string, error) {
	parts := make([]string, 0, len(queries))
	for _, q := range queries {
		part, err := e.query(q, t, length, fuel)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (e *encoder) prop(p ldl.Proposition, t int) string {
	switch prop := p.(type) {
	case ldl.True:
		return "true"
	case ldl.False:
		return "false"
	case ldl.Assert:
		atom := e.atom(prop.Fact.Ground, t)
		if prop.Fact.Negated {
			return not(atom)
		}
		return atom
	case ldl.Conjunction:
		parts := make([]string, len(prop.Props))
		for i, sub := range prop.Props {
			parts[i] = e.prop(sub, t)
		}
		return andAll(parts)
	case ldl.Disjunction:
		parts := make([]string, len(prop.Props))
		for i, sub := range prop.Props {
			parts[i] = e.prop(sub, t)
		}
		return orAll(parts)
	default:
		return "false"
	}
}

// atom returns the SMT constant for a ground fact at a trace position,
// declaring it on first use.
func (e *encoder) atom(f ldl.GroundFact, t int) string {
	key := fmt.Sprintf("%s@%d", f.Key(), t)
	if sym, ok := e.atoms[key]; ok {
		return sym
	}
	sym := fmt.Sprintf("p%d", len(e.decls))
	e.atoms[key] = sym
	e.decls = append(e.decls, sym)
	return sym
}

func andAll(parts []string) string {
	switch len(parts) {
	case 0:
		return "true"
	case 1:
		return parts[0]
	default:
		return "(and " + strings.Join(parts, " ") + ")"
	}
}

func orAll(parts []string) string {
	switch len(parts) {
	case 0:
		return "false"
	case 1:
		return parts[0]
	default:
		return "(or " + strings.Join(parts, " ") + ")"
	}
}

func not(part string) string { return "(not " + part + ")" }
