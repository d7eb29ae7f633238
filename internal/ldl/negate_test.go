package ldl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

// genQuery produces a random NNF query of bounded depth. The same generator
// seeds the lattice and simplification property tests.
func genQuery(r *rand.Rand, depth int) Query {
	if depth <= 0 {
		switch r.Intn(3) {
		case 0:
			return TT{}
		case 1:
			return FF{}
		default:
			return Formula{Prop: genProp(r, 0)}
		}
	}
	switch r.Intn(5) {
	case 0:
		return Formula{Prop: genProp(r, depth-1)}
	case 1:
		return NewAnd(genQuery(r, depth-1), genQuery(r, depth-1))
	case 2:
		return NewOr(genQuery(r, depth-1), genQuery(r, depth-1))
	case 3:
		return Exists{Path: genPath(r, depth-1), Query: genQuery(r, depth-1)}
	default:
		return All{Path: genPath(r, depth-1), Query: genQuery(r, depth-1)}
	}
}

func genProp(r *rand.Rand, depth int) Proposition {
	if depth <= 0 {
		switch r.Intn(4) {
		case 0:
			return True{}
		case 1:
			return False{}
		case 2:
			return AssertGround(genFact(r))
		default:
			return AssertNeg(genFact(r))
		}
	}
	if r.Intn(2) == 0 {
		return Conj(genProp(r, depth-1), genProp(r, depth-1))
	}
	return Disj(genProp(r, depth-1), genProp(r, depth-1))
}

func genPath(r *rand.Rand, depth int) Path {
	if depth <= 0 {
		if r.Intn(2) == 0 {
			return AnyStep()
		}
		return Step(genProp(r, 0))
	}
	switch r.Intn(4) {
	case 0:
		return Test{Query: genQuery(r, depth-1)}
	case 1:
		return NewChoice(genPath(r, depth-1), genPath(r, depth-1))
	case 2:
		return NewSequence(genPath(r, depth-1), genPath(r, depth-1))
	default:
		return Repeat{Body: genPath(r, depth-1)}
	}
}

func genFact(r *rand.Rand) GroundFact {
	names := []string{"curl", "squat", "lunge"}
	locs := []sensors.Location{sensors.LocationLeftWrist, sensors.LocationWaist}
	return Gesture(names[r.Intn(len(names))], 0.8, locs[r.Intn(len(locs))])
}

func TestNotInvolution(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		q := genQuery(r, 4)
		require.Equal(t, q.Key(), Not(Not(q)).Key(), "query %s", q.Key())
	}
}

func TestNotIsSizeLinear(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		q := genQuery(r, 4)
		require.LessOrEqual(t, Size(Not(q)), 2*Size(q), "query %s", q.Key())
	}
}

func TestNotDualizes(t *testing.T) {
	t.Parallel()

	curl := Gesture("curl", 0.8, sensors.LocationLeftWrist)

	cases := []struct {
		name string
		in   Query
		want string
	}{
		{name: "tt", in: TT{}, want: "ff"},
		{name: "ff", in: FF{}, want: "tt"},
		{
			name: "literal flips",
			in:   Formula{Prop: AssertGround(curl)},
			want: `(prop !Gesture("curl",0.8,left_wrist))`,
		},
		{
			name: "de morgan",
			in:   NewAnd(TT{}, FF{}),
			want: "(or ff tt)",
		},
		{
			name: "exists dualizes over unchanged path",
			in:   Diamond(TT{}),
			want: "(all (repeat (step true)) ff)",
		},
		{
			name: "all dualizes over unchanged path",
			in:   Box(FF{}),
			want: "(exists (repeat (step true)) tt)",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Not(tc.in).Key())
		})
	}
}

func TestNotPropNeverNestsNegation(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		p := genProp(r, 3)
		assertLiteralForm(t, NotProp(p))
	}
}

func assertLiteralForm(t *testing.T, p Proposition) {
	t.Helper()
	switch prop := p.(type) {
	case Conjunction:
		for _, sub := range prop.Props {
			assertLiteralForm(t, sub)
		}
	case Disjunction:
		for _, sub := range prop.Props {
			assertLiteralForm(t, sub)
		}
	case Assert, True, False:
	default:
		t.Fatalf("unexpected proposition form %T", p)
	}
}
