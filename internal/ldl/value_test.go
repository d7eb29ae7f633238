package ldl

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeetTable(t *testing.T) {
	t.Parallel()

	p := UnstableValue(Formula{Prop: True{}})
	q := UnstableValue(Formula{Prop: False{}})

	cases := []struct {
		name string
		a, b QueryValue
		want QueryValue
	}{
		{name: "true true", a: StableValue(true), b: StableValue(true), want: StableValue(true)},
		{name: "true false", a: StableValue(true), b: StableValue(false), want: StableValue(false)},
		{name: "false false", a: StableValue(false), b: StableValue(false), want: StableValue(false)},
		{name: "true absorbs unstable", a: StableValue(true), b: p, want: p},
		{name: "false dominates unstable", a: StableValue(false), b: p, want: StableValue(false)},
		{name: "unstable true", a: p, b: StableValue(true), want: p},
		{name: "unstable false", a: p, b: StableValue(false), want: StableValue(false)},
		{name: "unstable unstable", a: p, b: q, want: UnstableValue(NewAnd(p.Residual(), q.Residual()))},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want.String(), Meet(tc.a, tc.b).String())
		})
	}
}

func TestJoinTable(t *testing.T) {
	t.Parallel()

	p := UnstableValue(Formula{Prop: True{}})
	q := UnstableValue(Formula{Prop: False{}})

	cases := []struct {
		name string
		a, b QueryValue
		want QueryValue
	}{
		{name: "true true", a: StableValue(true), b: StableValue(true), want: StableValue(true)},
		{name: "true false", a: StableValue(true), b: StableValue(false), want: StableValue(true)},
		{name: "false false", a: StableValue(false), b: StableValue(false), want: StableValue(false)},
		{name: "true dominates unstable", a: StableValue(true), b: p, want: StableValue(true)},
		{name: "false absorbs unstable", a: StableValue(false), b: p, want: p},
		{name: "unstable true", a: p, b: StableValue(true), want: StableValue(true)},
		{name: "unstable false", a: p, b: StableValue(false), want: p},
		{name: "unstable unstable", a: p, b: q, want: UnstableValue(NewOr(p.Residual(), q.Residual()))},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want.String(), Join(tc.a, tc.b).String())
		})
	}
}

func TestLatticeLawsOnStableValues(t *testing.T) {
	t.Parallel()

	vals := []QueryValue{StableValue(false), StableValue(true)}
	for _, a := range vals {
		require.Equal(t, a, Meet(a, a))
		require.Equal(t, a, Join(a, a))
		for _, b := range vals {
			require.Equal(t, Meet(a, b), Meet(b, a))
			require.Equal(t, Join(a, b), Join(b, a))
			for _, c := range vals {
				require.Equal(t, Meet(Meet(a, b), c), Meet(a, Meet(b, c)))
				require.Equal(t, Join(Join(a, b), c), Join(a, Join(b, c)))
			}
		}
	}
}

func TestComplementInvolution(t *testing.T) {
	t.Parallel()

	require.Equal(t, StableValue(true), Complement(Complement(StableValue(true))))
	require.Equal(t, StableValue(false), Complement(Complement(StableValue(false))))

	r := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		v := UnstableValue(genQuery(r, 3))
		require.Equal(t, v.String(), Complement(Complement(v)).String())
	}
}

func TestComplementFlips(t *testing.T) {
	t.Parallel()

	require.Equal(t, StableValue(false), Complement(StableValue(true)))
	require.Equal(t, StableValue(true), Complement(StableValue(false)))

	v := Complement(UnstableValue(TT{}))
	require.False(t, v.IsStable())
	require.Equal(t, "ff", v.Residual().Key())
}
