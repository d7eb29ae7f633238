package ldl

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

// Attribute is one opaque argument of a ground fact.
type Attribute interface {
	attrKey() string
}

// StringAttr is a string-valued fact argument.
type StringAttr string

func (a StringAttr) attrKey() string { return strconv.Quote(string(a)) }

// NumberAttr is a numeric fact argument.
type NumberAttr float64

func (a NumberAttr) attrKey() string { return strconv.FormatFloat(float64(a), 'g', -1, 64) }

// LocationAttr is an enumerated sensor-location fact argument.
type LocationAttr sensors.Location

func (a LocationAttr) attrKey() string { return string(a) }

// GroundFact is a named predicate over an ordered tuple of attributes; the
// atomic truth unit of a trace state. Equality is structural.
type GroundFact struct {
	Name string
	Args []Attribute
}

// NewGroundFact builds a ground fact from a predicate name and arguments.
func NewGroundFact(name string, args ...Attribute) GroundFact {
	return GroundFact{Name: name, Args: args}
}

// Gesture builds the conventional gesture fact emitted by classification
// workflows: Gesture(name, probability, location).
func Gesture(name string, probability float64, loc sensors.Location) GroundFact {
	return NewGroundFact("Gesture", StringAttr(name), NumberAttr(probability), LocationAttr(loc))
}

// Key renders the canonical structural key, e.g. `Gesture("curl",0.8,left_wrist)`.
func (f GroundFact) Key() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.attrKey()
	}
	return f.Name + "(" + strings.Join(parts, ",") + ")"
}

// Equal reports structural equality.
func (f GroundFact) Equal(other GroundFact) bool {
	return f.Key() == other.Key()
}

// Fact is a ground fact in literal form: the fact itself or its negation.
// Negation is never nested.
type Fact struct {
	Ground  GroundFact
	Negated bool
}

// Pos wraps a ground fact as a positive literal.
func Pos(f GroundFact) Fact { return Fact{Ground: f} }

// Neg wraps a ground fact as a negative literal.
func Neg(f GroundFact) Fact { return Fact{Ground: f, Negated: true} }

// Key renders the canonical literal key.
func (f Fact) Key() string {
	if f.Negated {
		return "!" + f.Ground.Key()
	}
	return f.Ground.Key()
}

// FactSet is the set of ground facts holding at one trace position, keyed by
// structural key.
type FactSet map[string]GroundFact

// NewFactSet builds a fact set from ground facts.
func NewFactSet(facts ...GroundFact) FactSet {
	s := make(FactSet, len(facts))
	for _, f := range facts {
		s.Add(f)
	}
	return s
}

// Add inserts a ground fact.
func (s FactSet) Add(f GroundFact) { s[f.Key()] = f }

// Contains reports membership by structural equality.
func (s FactSet) Contains(f GroundFact) bool {
	_, ok := s[f.Key()]
	return ok
}

// Keys returns the sorted structural keys, for deterministic logging.
func (s FactSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
