package ldl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiger/exercise-trace-monitor/api/sensors"
)

func TestGroundFactKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fact GroundFact
		want string
	}{
		{
			name: "no args",
			fact: NewGroundFact("Resting"),
			want: "Resting",
		},
		{
			name: "gesture",
			fact: Gesture("curl", 0.8, sensors.LocationLeftWrist),
			want: `Gesture("curl",0.8,left_wrist)`,
		},
		{
			name: "mixed attrs",
			fact: NewGroundFact("Speed", NumberAttr(12.5), StringAttr("m/s")),
			want: `Speed(12.5,"m/s")`,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.fact.Key())
		})
	}
}

func TestGroundFactEqual(t *testing.T) {
	t.Parallel()

	a := Gesture("curl", 0.8, sensors.LocationLeftWrist)
	b := Gesture("curl", 0.8, sensors.LocationLeftWrist)
	c := Gesture("curl", 0.9, sensors.LocationLeftWrist)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestFactKey(t *testing.T) {
	t.Parallel()

	f := NewGroundFact("Resting")
	require.Equal(t, "Resting", Pos(f).Key())
	require.Equal(t, "!Resting", Neg(f).Key())
}

func TestFactSet(t *testing.T) {
	t.Parallel()

	curl := Gesture("curl", 0.8, sensors.LocationLeftWrist)
	squat := Gesture("squat", 0.9, sensors.LocationWaist)

	s := NewFactSet(curl)
	require.True(t, s.Contains(curl))
	require.False(t, s.Contains(squat))

	s.Add(squat)
	s.Add(curl)
	require.Len(t, s, 2)
	require.Equal(t, []string{curl.Key(), squat.Key()}, s.Keys())
}
