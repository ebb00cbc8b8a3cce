package alpha

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0,5
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 17:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

func TestParseCompleteSessions(t *testing.T) {
	workouts, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, workouts, 2)

	w := workouts[0]
	assert.Equal(t, "Legs · Day 2 · Week 4 · Push-Pull-Legs", w.Name)
	assert.Equal(t, time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC), w.Date)
	assert.Equal(t, "1:02 hr", w.Duration)
	require.Len(t, w.Moves, 6)

	cases := []struct {
		name, equipment string
		target, sets    int
	}{
		{"Hack Squats", "Machine", 8, 5},
		{"Sumo Squats", "Smith machine", 10, 3},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 4},
		{"Reverse Lunges", "Dumbbells", 10, 3},
		{"Standing Calf Raises", "Machine", 12, 4},
		{"Hanging Leg Raises", "Bodyweight", 12, 3},
	}
	for i, tc := range cases {
		mv := w.Moves[i]
		assert.Equal(t, i+1, mv.Number)
		assert.Equal(t, tc.name, mv.Name)
		assert.Equal(t, tc.equipment, mv.Equipment, tc.name)
		assert.Equal(t, tc.target, mv.TargetReps, tc.name)
		assert.Len(t, mv.Sets, tc.sets, tc.name)
	}

	calf := w.Moves[4].Sets
	assert.True(t, calf[0].IsWarmup)
	assert.Equal(t, 157.5, calf[1].WeightKg)
	assert.Equal(t, 0.5, calf[3].RIR)

	hyper := w.Moves[2].Sets
	assert.True(t, hyper[1].IsBodyweightPlus)
	assert.Equal(t, 35.0, hyper[1].WeightKg)

	push := workouts[1]
	assert.Equal(t, time.Date(2026, 2, 17, 17, 4, 0, 0, time.UTC), push.Date)
	require.Len(t, push.Moves, 1)
	assert.Len(t, push.Moves[0].Sets, 6)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(`"1. Bench Press · Barbell · 6 reps"`))
	assert.ErrorContains(t, err, "exercise without session")

	_, err = Parse(strings.NewReader("\"Push\";\"2026-02-17 5:04 h\";\"1:00 hr\"\n1;100;5;1\n"))
	assert.ErrorContains(t, err, "set data without exercise")
}

func TestParseEmptyInput(t *testing.T) {
	workouts, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestParseWeight(t *testing.T) {
	w, bw := parseWeight("+35")
	assert.True(t, bw)
	assert.Equal(t, 35.0, w)

	w, bw = parseWeight("+0")
	assert.True(t, bw)
	assert.Zero(t, w)

	w, bw = parseWeight("102,5")
	assert.False(t, bw)
	assert.Equal(t, 102.5, w)
}

func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · +0 kg · 7 reps<br>junk")
	require.Len(t, sets, 2)
	assert.Equal(t, Set{Number: 1, WeightKg: 37.5, Reps: 9, IsWarmup: true}, sets[0])
	assert.Equal(t, Set{Number: 2, IsBodyweightPlus: true, Reps: 7, IsWarmup: true}, sets[1])
	assert.Nil(t, parseWarmups(""))
}

func TestDurationMinutes(t *testing.T) {
	for in, want := range map[string]int{"1:02 hr": 62, "0:45 hr": 45, "2:00": 120} {
		got, ok := DurationMinutes(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := DurationMinutes("an hour")
	assert.False(t, ok)
}
