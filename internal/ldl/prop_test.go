package ldl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

func TestPropositionHolds(t *testing.T) {
	t.Parallel()

	curl := Gesture("curl", 0.8, sensors.LocationLeftWrist)
	squat := Gesture("squat", 0.9, sensors.LocationWaist)
	facts := NewFactSet(curl)

	cases := []struct {
		name string
		prop Proposition
		want bool
	}{
		{name: "true", prop: True{}, want: true},
		{name: "false", prop: False{}, want: false},
		{name: "present literal", prop: AssertGround(curl), want: true},
		{name: "absent literal", prop: AssertGround(squat), want: false},
		{name: "negated absent literal", prop: AssertNeg(squat), want: true},
		{name: "negated present literal", prop: AssertNeg(curl), want: false},
		{name: "conjunction short-circuits", prop: Conj(AssertGround(curl), False{}), want: false},
		{name: "conjunction holds", prop: Conj(AssertGround(curl), AssertNeg(squat)), want: true},
		{name: "disjunction holds", prop: Disj(False{}, AssertGround(curl)), want: true},
		{name: "disjunction fails", prop: Disj(False{}, AssertGround(squat)), want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.prop.Holds(facts))
		})
	}
}

func TestConjFlattens(t *testing.T) {
	t.Parallel()

	inner := Conj(True{}, False{})
	out := Conj(inner, True{}, Conj(False{}, True{}))

	c, ok := out.(Conjunction)
	require.True(t, ok)
	require.Len(t, c.Props, 5)
	for _, p := range c.Props {
		_, nested := p.(Conjunction)
		require.False(t, nested)
	}
}

func TestDisjFlattens(t *testing.T) {
	t.Parallel()

	inner := Disj(True{}, False{})
	out := Disj(inner, Disj(False{}, True{}))

	d, ok := out.(Disjunction)
	require.True(t, ok)
	require.Len(t, d.Props, 4)
	// Mixed kinds do not flatten across each other.
	mixed := Disj(Conj(True{}, False{}), True{})
	m, ok := mixed.(Disjunction)
	require.True(t, ok)
	require.Len(t, m.Props, 2)
}

func TestPropKeys(t *testing.T) {
	t.Parallel()

	curl := Gesture("curl", 0.8, sensors.LocationLeftWrist)
	require.Equal(t, "true", True{}.Key())
	require.Equal(t, "false", False{}.Key())
	require.Equal(t, `(and true Gesture("curl",0.8,left_wrist))`, Conj(True{}, AssertGround(curl)).Key())
	require.Equal(t, `(or false !Gesture("curl",0.8,left_wrist))`, Disj(False{}, AssertNeg(curl)).Key())
}
