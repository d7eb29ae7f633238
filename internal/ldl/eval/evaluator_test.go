package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
	"github.com/tiger/exercise-trace-monitor/internal/ldl"
)

var (
	curl = ldl.Gesture("curl", 0.8, sensors.LocationLeftWrist)
	rest = ldl.NewGroundFact("Resting")
)

// evalTrace runs a query across a finite trace of fact sets, returning the
// sequence of values; unstable residuals feed the next position.
func evalTrace(t *testing.T, q ldl.Query, trace []ldl.FactSet) []ldl.QueryValue {
	t.Helper()
	out := make([]ldl.QueryValue, 0, len(trace))
	current := q
	for i, facts := range trace {
		last := i == len(trace)-1
		v := Evaluate(current, facts, last)
		out = append(out, v)
		if v.IsStable() {
			break
		}
		current = v.Residual()
	}
	return out
}

func TestEventuallyGestureMatches(t *testing.T) {
	t.Parallel()

	q := ldl.Diamond(ldl.Formula{Prop: ldl.AssertGround(curl)})
	out := evalTrace(t, q, []ldl.FactSet{
		ldl.NewFactSet(),
		ldl.NewFactSet(curl),
	})

	require.Len(t, out, 2)
	require.False(t, out[0].IsStable())
	require.Equal(t, ldl.StableValue(true), out[1])
}

func TestAlwaysGestureFailsOnGap(t *testing.T) {
	t.Parallel()

	q := ldl.Box(ldl.Formula{Prop: ldl.AssertGround(curl)})
	out := evalTrace(t, q, []ldl.FactSet{
		ldl.NewFactSet(curl),
		ldl.NewFactSet(),
	})

	require.Len(t, out, 2)
	require.False(t, out[0].IsStable())
	require.Equal(t, ldl.StableValue(false), out[1])
}

func TestNextFailsOnLastEvent(t *testing.T) {
	t.Parallel()

	v := Evaluate(ldl.Next(ldl.TT{}), ldl.NewFactSet(curl), true)
	require.Equal(t, ldl.StableValue(false), v)
}

func TestLastHoldsOnSingleEvent(t *testing.T) {
	t.Parallel()

	v := Evaluate(ldl.Last(), ldl.NewFactSet(), true)
	require.Equal(t, ldl.StableValue(true), v)
}

func TestLastRejectsNonFinalEvent(t *testing.T) {
	t.Parallel()

	out := evalTrace(t, ldl.Last(), []ldl.FactSet{
		ldl.NewFactSet(),
		ldl.NewFactSet(),
	})

	require.Len(t, out, 2)
	require.False(t, out[0].IsStable())
	require.Equal(t, ldl.StableValue(false), out[1])
}

func TestUntilHoldsWhenTargetArrives(t *testing.T) {
	t.Parallel()

	a := ldl.Formula{Prop: ldl.AssertGround(rest)}
	b := ldl.Formula{Prop: ldl.AssertGround(curl)}
	out := evalTrace(t, ldl.Until(a, b), []ldl.FactSet{
		ldl.NewFactSet(rest),
		ldl.NewFactSet(rest),
		ldl.NewFactSet(curl),
	})

	require.Len(t, out, 3)
	require.False(t, out[0].IsStable())
	require.False(t, out[1].IsStable())
	require.Equal(t, ldl.StableValue(true), out[2])
}

func TestUntilFailsOnBrokenGuard(t *testing.T) {
	t.Parallel()

	a := ldl.Formula{Prop: ldl.AssertGround(rest)}
	b := ldl.Formula{Prop: ldl.AssertGround(curl)}
	out := evalTrace(t, ldl.Until(a, b), []ldl.FactSet{
		ldl.NewFactSet(rest),
		ldl.NewFactSet(),
		ldl.NewFactSet(curl),
	})

	require.Len(t, out, 2)
	require.False(t, out[0].IsStable())
	require.Equal(t, ldl.StableValue(false), out[1])
}

func TestContradictionFailsImmediately(t *testing.T) {
	t.Parallel()

	q := ldl.NewAnd(
		ldl.Formula{Prop: ldl.AssertGround(curl)},
		ldl.Formula{Prop: ldl.AssertNeg(curl)},
	)
	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(curl), false))
	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), false))
}

func TestChoiceTakesAnyBranch(t *testing.T) {
	t.Parallel()

	path := ldl.NewChoice(
		ldl.Step(ldl.AssertGround(curl)),
		ldl.Step(ldl.AssertGround(rest)),
	)
	q := ldl.Exists{Path: path, Query: ldl.TT{}}

	v := Evaluate(q, ldl.NewFactSet(rest), false)
	require.False(t, v.IsStable())
	require.Equal(t, "tt", v.Residual().Key())

	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), false))
}

func TestSequenceThreadsResidual(t *testing.T) {
	t.Parallel()

	path := ldl.NewSequence(
		ldl.Step(ldl.AssertGround(rest)),
		ldl.Step(ldl.AssertGround(curl)),
	)
	q := ldl.Exists{Path: path, Query: ldl.TT{}}

	out := evalTrace(t, q, []ldl.FactSet{
		ldl.NewFactSet(rest),
		ldl.NewFactSet(curl),
		ldl.NewFactSet(),
	})

	require.Len(t, out, 3)
	require.False(t, out[0].IsStable())
	require.False(t, out[1].IsStable())
	require.Equal(t, ldl.StableValue(true), out[2])
}

func TestTestOnlyRepeatTerminates(t *testing.T) {
	t.Parallel()

	path := ldl.Repeat{Body: ldl.Test{Query: ldl.TT{}}}
	q := ldl.Exists{Path: path, Query: ldl.Formula{Prop: ldl.AssertGround(curl)}}

	require.Equal(t, ldl.StableValue(true), Evaluate(q, ldl.NewFactSet(curl), false))
	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), true))
}

func TestMixedRepeatTerminates(t *testing.T) {
	t.Parallel()

	// The repeat body can iterate through the test branch without consuming a
	// step; evaluation must collapse the re-entered repeat instead of looping.
	path := ldl.Repeat{Body: ldl.NewChoice(ldl.Test{Query: ldl.TT{}}, ldl.AnyStep())}
	q := ldl.Exists{Path: path, Query: ldl.Formula{Prop: ldl.AssertGround(curl)}}

	require.Equal(t, ldl.StableValue(true), Evaluate(q, ldl.NewFactSet(curl), false))
	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), true))

	// Without the gesture and with positions left, the step branch keeps the
	// obligation open and the residual is the query itself.
	v := Evaluate(q, ldl.NewFactSet(), false)
	require.False(t, v.IsStable())
	require.Equal(t, q.Key(), v.Residual().Key())

	out := evalTrace(t, q, []ldl.FactSet{
		ldl.NewFactSet(),
		ldl.NewFactSet(curl),
	})
	require.Len(t, out, 2)
	require.Equal(t, ldl.StableValue(true), out[1])
}

func TestMixedRepeatUnsatisfiableBody(t *testing.T) {
	t.Parallel()

	path := ldl.Repeat{Body: ldl.NewChoice(ldl.Test{Query: ldl.TT{}}, ldl.AnyStep())}
	q := ldl.Exists{Path: path, Query: ldl.FF{}}

	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), true))

	// ff can never hold, but a step remains available, so the value stays
	// open rather than diverging.
	v := Evaluate(q, ldl.NewFactSet(), false)
	require.False(t, v.IsStable())
}

func TestAllOverMixedRepeatTerminates(t *testing.T) {
	t.Parallel()

	path := ldl.Repeat{Body: ldl.NewChoice(ldl.Test{Query: ldl.TT{}}, ldl.AnyStep())}
	q := ldl.All{Path: path, Query: ldl.Formula{Prop: ldl.AssertGround(curl)}}

	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(), false))
	require.Equal(t, ldl.StableValue(true), Evaluate(q, ldl.NewFactSet(curl), true))

	v := Evaluate(q, ldl.NewFactSet(curl), false)
	require.False(t, v.IsStable())
	require.Equal(t, q.Key(), v.Residual().Key())
}

func TestAllOverTestNegatesGuard(t *testing.T) {
	t.Parallel()

	// All over test(A) with body B: holds when A fails or B holds.
	q := ldl.All{
		Path:  ldl.Test{Query: ldl.Formula{Prop: ldl.AssertGround(rest)}},
		Query: ldl.Formula{Prop: ldl.AssertGround(curl)},
	}

	require.Equal(t, ldl.StableValue(true), Evaluate(q, ldl.NewFactSet(), false))
	require.Equal(t, ldl.StableValue(true), Evaluate(q, ldl.NewFactSet(rest, curl), false))
	require.Equal(t, ldl.StableValue(false), Evaluate(q, ldl.NewFactSet(rest), false))
}
