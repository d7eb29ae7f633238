package ldl

import "strings"

// Query is a linear-time dynamic logic formula over finite traces.
type Query interface {
	isQuery()
	// Key renders the canonical structural key.
	Key() string
}

// TT is the query holding on every trace.
type TT struct{}

func (TT) isQuery() {}
func (TT) Key() string { return "tt" }

// FF is the query holding on no trace.
type FF struct{}

func (FF) isQuery() {}
func (FF) Key() string { return "ff" }

// Formula lifts a proposition to a query over the current position.
type Formula struct {
	Prop Proposition
}

func (Formula) isQuery() {}
func (f Formula) Key() string { return "(prop " + f.Prop.Key() + ")" }

// And holds when all operands hold. Arity >= 2 by construction.
type And struct {
	Queries []Query
}

func (And) isQuery() {}
func (a And) Key() string { return queryListKey("and", a.Queries) }

// Or holds when at least one operand holds. Arity >= 2 by construction.
type Or struct {
	Queries []Query
}

func (Or) isQuery() {}
func (o Or) Key() string { return queryListKey("or", o.Queries) }

// Exists holds when some prefix matching the path ends in a position where
// the body query holds.
type Exists struct {
	Path  Path
	Query Query
}

func (Exists) isQuery() {}
func (e Exists) Key() string { return "(exists " + e.Path.Key() + " " + e.Query.Key() + ")" }

// All holds when every prefix matching the path ends in a position where the
// body query holds.
type All struct {
	Path  Path
	Query Query
}

func (All) isQuery() {}
func (a All) Key() string { return "(all " + a.Path.Key() + " " + a.Query.Key() + ")" }

// NewAnd builds a conjunction query, flattening nested conjunctions.
func NewAnd(first, second Query, rest ...Query) Query {
	queries := append([]Query{first, second}, rest...)
	out := make([]Query, 0, len(queries))
	for _, q := range queries {
		if a, ok := q.(And); ok {
			out = append(out, a.Queries...)
			continue
		}
		out = append(out, q)
	}
	return And{Queries: out}
}

// NewOr builds a disjunction query, flattening nested disjunctions.
func NewOr(first, second Query, rest ...Query) Query {
	queries := append([]Query{first, second}, rest...)
	out := make([]Query, 0, len(queries))
	for _, q := range queries {
		if o, ok := q.(Or); ok {
			out = append(out, o.Queries...)
			continue
		}
		out = append(out, q)
	}
	return Or{Queries: out}
}

// End holds exactly when the trace has ended.
func End() Query { return All{Path: Test{Query: Formula{Prop: True{}}}, Query: FF{}} }

// Last holds exactly on the last step of the trace.
func Last() Query { return All{Path: AnyStep(), Query: End()} }

// Next holds when the trace has a next position and q holds there.
func Next(q Query) Query { return Exists{Path: AnyStep(), Query: q} }

// Diamond holds when q holds now or at some later position.
func Diamond(q Query) Query { return Exists{Path: Repeat{Body: AnyStep()}, Query: q} }

// Box holds when q holds now and at every later position.
func Box(q Query) Query { return All{Path: Repeat{Body: AnyStep()}, Query: q} }

// Until holds when q2 holds at some position and q1 holds at every position
// before it.
func Until(q1, q2 Query) Query {
	body := NewSequence(Test{Query: q1}, AnyStep())
	return Exists{Path: Repeat{Body: body}, Query: q2}
}

// Size counts AST nodes of a query, including propositions and paths.
func Size(q Query) int {
	switch query := q.(type) {
	case TT, FF:
		return 1
	case Formula:
		return 1 + SizeProp(query.Prop)
	case And:
		n := 1
		for _, sub := range query.Queries {
			n += Size(sub)
		}
		return n
	case Or:
		n := 1
		for _, sub := range query.Queries {
			n += Size(sub)
		}
		return n
	case Exists:
		return 1 + SizePath(query.Path) + Size(query.Query)
	case All:
		return 1 + SizePath(query.Path) + Size(query.Query)
	default:
		return 1
	}
}

// SizeProp counts AST nodes of a proposition.
func SizeProp(p Proposition) int {
	switch prop := p.(type) {
	case True, False, Assert:
		return 1
	case Conjunction:
		n := 1
		for _, sub := range prop.Props {
			n += SizeProp(sub)
		}
		return n
	case Disjunction:
		n := 1
		for _, sub := range prop.Props {
			n += SizeProp(sub)
		}
		return n
	default:
		return 1
	}
}

// SizePath counts AST nodes of a path.
func SizePath(p Path) int {
	switch path := p.(type) {
	case AssertFact:
		return 1 + SizeProp(path.Prop)
	case Test:
		return 1 + Size(path.Query)
	case Choice:
		n := 1
		for _, sub := range path.Paths {
			n += SizePath(sub)
		}
		return n
	case Sequence:
		n := 1
		for _, sub := range path.Paths {
			n += SizePath(sub)
		}
		return n
	case Repeat:
		return 1 + SizePath(path.Body)
	default:
		return 1
	}
}

func queryListKey(op string, queries []Query) string {
	parts := make([]string, len(queries))
	for i, q := range queries {
		parts[i] = q.Key()
	}
	return "(" + op + " " + strings.Join(parts, " ") + ")"
}
