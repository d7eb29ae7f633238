package ldl

import "strings"

// Path is a regular expression over trace steps and inline tests.
type Path interface {
	isPath()
	// Key renders the canonical structural key.
	Key() string
}

// AssertFact consumes one trace step on which the proposition holds.
type AssertFact struct {
	Prop Proposition
}

func (AssertFact) isPath() {}
func (a AssertFact) Key() string { return "(step " + a.Prop.Key() + ")" }

// Test is a zero-length step asserting a query holds at the current position.
type Test struct {
	Query Query
}

func (Test) isPath() {}
func (t Test) Key() string { return "(test " + t.Query.Key() + ")" }

// Choice matches when any alternative matches. Arity >= 2 by construction.
type Choice struct {
	Paths []Path
}

func (Choice) isPath() {}
func (c Choice) Key() string { return pathListKey("choice", c.Paths) }

// Sequence matches the concatenation of its parts. Arity >= 2 by construction.
type Sequence struct {
	Paths []Path
}

func (Sequence) isPath() {}
func (s Sequence) Key() string { return pathListKey("seq", s.Paths) }

// Repeat matches zero or more iterations of its body.
type Repeat struct {
	Body Path
}

func (Repeat) isPath() {}
func (r Repeat) Key() string { return "(repeat " + r.Body.Key() + ")" }

// NewChoice builds a choice, flattening nested choices.
func NewChoice(first, second Path, rest ...Path) Path {
	paths := append([]Path{first, second}, rest...)
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if c, ok := p.(Choice); ok {
			out = append(out, c.Paths...)
			continue
		}
		out = append(out, p)
	}
	return Choice{Paths: out}
}

// NewSequence builds a sequence, flattening nested sequences.
func NewSequence(first, second Path, rest ...Path) Path {
	paths := append([]Path{first, second}, rest...)
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if s, ok := p.(Sequence); ok {
			out = append(out, s.Paths...)
			continue
		}
		out = append(out, p)
	}
	return Sequence{Paths: out}
}

// Step consumes one trace step on which prop holds.
func Step(prop Proposition) Path { return AssertFact{Prop: prop} }

// AnyStep consumes one arbitrary trace step.
func AnyStep() Path { return AssertFact{Prop: True{}} }

// TestOnly reports whether the path contains no step-consuming AssertFact,
// only tests combined by choice, sequence and repeat. Repeat over a test-only
// body collapses to a single fixed-point iteration during evaluation.
func TestOnly(p Path) bool {
	switch path := p.(type) {
	case AssertFact:
		return false
	case Test:
		return true
	case Choice:
		for _, sub := range path.Paths {
			if !TestOnly(sub) {
				return false
			}
		}
		return true
	case Sequence:
		for _, sub := range path.Paths {
			if !TestOnly(sub) {
				return false
			}
		}
		return true
	case Repeat:
		return TestOnly(path.Body)
	default:
		return false
	}
}

func pathListKey(op string, paths []Path) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p.Key()
	}
	return "(" + op + " " + strings.Join(parts, " ") + ")"
}
