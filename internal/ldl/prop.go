package ldl

import "strings"

// Proposition is a propositional combination of facts evaluated at a single
// trace position.
type Proposition interface {
	isProposition()
	// Key renders the canonical structural key.
	Key() string
	// Holds evaluates the proposition against the facts of one trace position.
	Holds(facts FactSet) bool
}

// True is the proposition holding at every position.
type True struct{}

func (True) isProposition() {}
func (True) Key() string { return "true" }
func (True) Holds(_ FactSet) bool { return true }

// False is the proposition holding at no position.
type False struct{}

func (False) isProposition() {}
func (False) Key() string { return "false" }
func (False) Holds(_ FactSet) bool { return false }

// Assert asserts one literal: a ground fact is present, or absent when the
// literal is negated.
type Assert struct {
	Fact Fact
}

func (Assert) isProposition() {}
func (a Assert) Key() string { return a.Fact.Key() }

func (a Assert) Holds(facts FactSet) bool {
	present := facts.Contains(a.Fact.Ground)
	if a.Fact.Negated {
		return !present
	}
	return present
}

// Conjunction holds when all operands hold. Arity >= 2 by construction.
type Conjunction struct {
	Props []Proposition
}

func (Conjunction) isProposition() {}
func (c Conjunction) Key() string { return propListKey("and", c.Props) }

func (c Conjunction) Holds(facts FactSet) bool {
	for _, p := range c.Props {
		if !p.Holds(facts) {
			return false
		}
	}
	return true
}

// Disjunction holds when at least one operand holds. Arity >= 2 by construction.
type Disjunction struct {
	Props []Proposition
}

func (Disjunction) isProposition() {}
func (d Disjunction) Key() string { return propListKey("or", d.Props) }

func (d Disjunction) Holds(facts FactSet) bool {
	for _, p := range d.Props {
		if p.Holds(facts) {
			return true
		}
	}
	return false
}

// Conj builds a conjunction, flattening nested conjunctions.
func Conj(first, second Proposition, rest ...Proposition) Proposition {
	props := append([]Proposition{first, second}, rest...)
	out := make([]Proposition, 0, len(props))
	for _, p := range props {
		if c, ok := p.(Conjunction); ok {
			out = append(out, c.Props...)
			continue
		}
		out = append(out, p)
	}
	return Conjunction{Props: out}
}

// Disj builds a disjunction, flattening nested disjunctions.
func Disj(first, second Proposition, rest ...Proposition) Proposition {
	props := append([]Proposition{first, second}, rest...)
	out := make([]Proposition, 0, len(props))
	for _, p := range props {
		if d, ok := p.(Disjunction); ok {
			out = append(out, d.Props...)
			continue
		}
		out = append(out, p)
	}
	return Disjunction{Props: out}
}

// AssertGround asserts a positive ground fact.
func AssertGround(f GroundFact) Proposition { return Assert{Fact: Pos(f)} }

// AssertNeg asserts the absence of a ground fact.
func AssertNeg(f GroundFact) Proposition { return Assert{Fact: Neg(f)} }

func propListKey(op string, props []Proposition) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.Key()
	}
	return "(" + op + " " + strings.Join(parts, " ") + ")"
}
