package smt

import "github.com/tiger/exercise-trace-monitor/internal/ldl"

// Rewrite applies semantics-preserving structural rules: constant folding,
// flattening, deduplication, complementary-literal collapse, and removal of
// test-only repeats. The result stays in negation normal form.
func Rewrite(q ldl.Query) ldl.Query {
	switch query := q.(type) {
	case ldl.TT, ldl.FF:
		return q
	case ldl.Formula:
		p := rewriteProp(query.Prop)
		switch p.(type) {
		case ldl.True:
			return ldl.TT{}
		case ldl.False:
			return ldl.FF{}
		}
		return ldl.Formula{Prop: p}
	case ldl.And:
		return combineAnd(rewriteAll(query.Queries))
	case ldl.Or:
		return combineOr(rewriteAll(query.Queries))
	case ldl.Exists:
		body := Rewrite(query.Query)
		if _, ok := body.(ldl.FF); ok {
			// No endpoint can satisfy FF.
			return ldl.FF{}
		}
		path := rewritePath(query.Path)
		if rep, ok := path.(ldl.Repeat); ok && ldl.TestOnly(rep.Body) {
			return body
		}
		return ldl.Exists{Path: path, Query: body}
	case ldl.All:
		body := Rewrite(query.Query)
		if _, ok := body.(ldl.TT); ok {
			return ldl.TT{}
		}
		path := rewritePath(query.Path)
		if rep, ok := path.(ldl.Repeat); ok && ldl.TestOnly(rep.Body) {
			return body
		}
		return ldl.All{Path: path, Query: body}
	default:
		return q
	}
}

func rewriteAll(queries []ldl.Query) []ldl.Query {
	out := make([]ldl.Query, len(queries))
	for i, q := range queries {
		out[i] = Rewrite(q)
	}
	return out
}

func combineAnd(queries []ldl.Query) ldl.Query {
	flat := make([]ldl.Query, 0, len(queries))
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		switch sub := q.(type) {
		case ldl.TT:
			continue
		case ldl.FF:
			return ldl.FF{}
		case ldl.And:
			for _, inner := range sub.Queries {
				if key := inner.Key(); !seen[key] {
					seen[key] = true
					flat = append(flat, inner)
				}
			}
			continue
		}
		if key := q.Key(); !seen[key] {
			seen[key] = true
			flat = append(flat, q)
		}
	}
	for _, q := range flat {
		if seen[ldl.Not(q).Key()] {
			return ldl.FF{}
		}
	}
	switch len(flat) {
	case 0:
		return ldl.TT{}
	case 1:
		return flat[0]
	default:
		return ldl.And{Queries: flat}
	}
}

func combineOr(queries []ldl.Query) ldl.Query {
	flat := make([]ldl.Query, 0, len(queries))
	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		switch sub := q.(type) {
		case ldl.FF:
			continue
		case ldl.TT:
			return ldl.TT{}
		case ldl.Or:
			for _, inner := range sub.Queries {
				if key := inner.Key(); !seen[key] {
					seen[key] = true
					flat = append(flat, inner)
				}
			}
			continue
		}
		if key := q.Key(); !seen[key] {
			seen[key] = true
			flat = append(flat, q)
		}
	}
	for _, q := range flat {
		if seen[ldl.Not(q).Key()] {
			return ldl.TT{}
		}
	}
	switch len(flat) {
	case 0:
		return ldl.FF{}
	case 1:
		return flat[0]
	default:
		return ldl.Or{Queries: flat}
	}
}

func rewritePath(p ldl.Path) ldl.Path {
	switch path := p.(type) {
	case ldl.AssertFact:
		return ldl.AssertFact{Prop: rewriteProp(path.Prop)}
	case ldl.Test:
		return ldl.Test{Query: Rewrite(path.Query)}
	case ldl.Choice:
		out := make([]ldl.Path, len(path.Paths))
		for i, sub := range path.Paths {
			out[i] = rewritePath(sub)
		}
		return ldl.Choice{Paths: out}
	case ldl.Sequence:
		out := make([]ldl.Path, len(path.Paths))
		for i, sub := range path.Paths {
			out[i] = rewritePath(sub)
		}
		return ldl.Sequence{Paths: out}
	case ldl.Repeat:
		return ldl.Repeat{Body: rewritePath(path.Body)}
	default:
		return p
	}
}

func rewriteProp(p ldl.Proposition) ldl.Proposition {
	switch prop := p.(type) {
	case ldl.True, ldl.False, ldl.Assert:
		return p
	case ldl.Conjunction:
		return combineConj(rewritePropsAll(prop.Props))
	case ldl.Disjunction:
		return combineDisj(rewritePropsAll(prop.Props))
	default:
		return p
	}
}

func rewritePropsAll(props []ldl.Proposition) []ldl.Proposition {
	out := make([]ldl.Proposition, len(props))
	for i, p := range props {
		out[i] = rewriteProp(p)
	}
	return out
}

func combineConj(props []ldl.Proposition) ldl.Proposition {
	flat := make([]ldl.Proposition, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		switch sub := p.(type) {
		case ldl.True:
			continue
		case ldl.False:
			return ldl.False{}
		case ldl.Conjunction:
			for _, inner := range sub.Props {
				if key := inner.Key(); !seen[key] {
					seen[key] = true
					flat = append(flat, inner)
				}
			}
			continue
		}
		if key := p.Key(); !seen[key] {
			seen[key] = true
			flat = append(flat, p)
		}
	}
	for _, p := range flat {
		if seen[ldl.NotProp(p).Key()] {
			return ldl.False{}
		}
	}
	switch len(flat) {
	case 0:
		return ldl.True{}
	case 1:
		return flat[0]
	default:
		return ldl.Conjunction{Props: flat}
	}
}

func combineDisj(props []ldl.Proposition) ldl.Proposition {
	flat := make([]ldl.Proposition, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		switch sub := p.(type) {
		case ldl.False:
			continue
		case ldl.True:
			return ldl.True{}
		case ldl.Disjunction:
			for _, inner := range sub.Props {
				if key := inner.Key(); !seen[key] {
					seen[key] = true
					flat = append(flat, inner)
				}
			}
			continue
		}
		if key := p.Key(); !seen[key] {
			seen[key] = true
			flat = append(flat, p)
		}
	}
	for _, p := range flat {
		if seen[ldl.NotProp(p).Key()] {
			return ldl.True{}
		}
	}
	switch len(flat) {
	case 0:
		return ldl.False{}
	case 1:
		return flat[0]
	default:
		return ldl.Disjunction{Props: flat}
	}
}
