package ldl

// NotProp negates a proposition by structural descent, preserving negation
// normal form. The result is size-linear in the input.
func NotProp(p Proposition) Proposition {
	switch prop := p.(type) {
	case True:
		return False{}
	case False:
		return True{}
	case Assert:
		if prop.Fact.Negated {
			return Assert{Fact: Pos(prop.Fact.Ground)}
		}
		return Assert{Fact: Neg(prop.Fact.Ground)}
	case Conjunction:
		return Disjunction{Props: notProps(prop.Props)}
	case Disjunction:
		return Conjunction{Props: notProps(prop.Props)}
	default:
		return p
	}
}

// Not negates a query by structural descent, preserving negation normal form.
// Exists and All dualize over an unchanged path; the result is size-linear in
// the input.
func Not(q Query) Query {
	switch query := q.(type) {
	case TT:
		return FF{}
	case FF:
		return TT{}
	case Formula:
		return Formula{Prop: NotProp(query.Prop)}
	case And:
		return Or{Queries: notQueries(query.Queries)}
	case Or:
		return And{Queries: notQueries(query.Queries)}
	case Exists:
		return All{Path: query.Path, Query: Not(query.Query)}
	case All:
		return Exists{Path: query.Path, Query: Not(query.Query)}
	default:
		return q
	}
}

func notProps(props []Proposition) []Proposition {
	out := make([]Proposition, len(props))
	for i, p := range props {
		out[i] = NotProp(p)
	}
	return out
}

func notQueries(queries []Query) []Query {
	out := make([]Query, len(queries))
	for i, q := range queries {
		out[i] = Not(q)
	}
	return out
}
