package theory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPitch(t *testing.T) {
	c := NewPitch(PitchClassC, Natural)

	got := GetPitch(c, Interval{Size: Second, Quality: Major, PitchOffset: 1, SemitoneOffset: 2})
	assert.Equal(t, Pitch{Class: PitchClassD, Accidental: Natural, PitchOffset: 1, SemitoneOffset: 2}, got)

	got = GetPitch(c, Interval{Size: Second, Quality: Minor, PitchOffset: 1, SemitoneOffset: 1})
	assert.Equal(t, Pitch{Class: PitchClassD, Accidental: Flat, PitchOffset: 1, SemitoneOffset: 1}, got)
}

func TestGetPitchSpelling(t *testing.T) {
	tests := []struct {
		root     string
		interval Interval
		want     string
	}{
		{"F", MustInterval(Fourth, Perfect), "Bb"},
		{"Cb", MustInterval(Second, Major), "Db"},
		{"D", MustInterval(Third, Major), "F#"},
		{"B", MustInterval(Second, Minor), "C"},
		{"E", MustInterval(Fifth, Augmented), "B#"},
		{"Bb", MustInterval(Third, Minor), "Db"},
		{"C", MustInterval(Third, Diminished), "Ebb"},
		{"G#", MustInterval(Seventh, Major), "F##"},
		{"A", MustInterval(Octave, Perfect), "A"},
	}
	for _, tt := range tests {
		t.Run(tt.root+" "+tt.interval.String(), func(t *testing.T) {
			root, err := ParsePitch(tt.root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, GetPitch(root, tt.interval).String())
		})
	}
}

func TestGetPitchAccumulatesOffsets(t *testing.T) {
	d := Pitch{Class: PitchClassD, Accidental: Natural, PitchOffset: 1, SemitoneOffset: 2}
	got := GetPitch(d, MustInterval(Third, Major))
	assert.Equal(t, Pitch{Class: PitchClassF, Accidental: Sharp, PitchOffset: 3, SemitoneOffset: 6}, got)
}

func TestGetPitchWrapsLargeMismatch(t *testing.T) {
	// C up an augmented seventh lands on B with a raw mismatch of -11
	got := GetPitch(NewPitch(PitchClassC, Natural), MustInterval(Seventh, Augmented))
	assert.Equal(t, PitchClassB, got.Class)
	assert.Equal(t, Sharp, got.Accidental)
	assert.Equal(t, 6, got.PitchOffset)
	assert.Equal(t, 12, got.SemitoneOffset)
}

func TestGetPitchUnspellableFallsBackToNatural(t *testing.T) {
	// six semitones over a single letter step needs a triple sharp
	got := GetPitch(NewPitch(PitchClassC, Natural), CreateInterval(6, 1))
	assert.Equal(t, PitchClassD, got.Class)
	assert.Equal(t, Natural, got.Accidental)
	assert.Equal(t, 6, got.SemitoneOffset)
}

func TestGetPitchNegativeInterval(t *testing.T) {
	got := GetPitch(NewPitch(PitchClassC, Natural), CreateInterval(-1, -1))
	assert.Equal(t, PitchClassB, got.Class)
	assert.Equal(t, Natural, got.Accidental)
	assert.Equal(t, -1, got.PitchOffset)
	assert.Equal(t, -1, got.SemitoneOffset)
}

func TestGetIntervalBetween(t *testing.T) {
	c := NewPitch(PitchClassC, Natural)
	e := Pitch{Class: PitchClassE, Accidental: Natural, PitchOffset: 2, SemitoneOffset: 4}

	assert.Equal(t, Interval{Size: Third, Quality: Major, PitchOffset: 2, SemitoneOffset: 4}, GetIntervalBetween(c, e))

	// descending deltas are lifted into the octave above
	assert.Equal(t, Interval{Size: Sixth, Quality: Minor, PitchOffset: 5, SemitoneOffset: 8}, GetIntervalBetween(e, c))

	// compound spans are stored reduced, unlike CreateInterval
	d2 := Pitch{Class: PitchClassD, Accidental: Natural, PitchOffset: 8, SemitoneOffset: 14}
	assert.Equal(t, Interval{Size: Second, Quality: Major, PitchOffset: 1, SemitoneOffset: 2}, GetIntervalBetween(c, d2))
	assert.Equal(t, 14, CreateInterval(14, 8).SemitoneOffset)
}

func TestGetIntervalBetweenInvertsGetPitch(t *testing.T) {
	root := NewPitch(PitchClassG, Flat)
	for _, i := range MajorScaleIntervals()[:6] {
		got := GetIntervalBetween(root, GetPitch(root, i))
		assert.Equal(t, i, got)
	}
}

func TestTransposePitch(t *testing.T) {
	p := Pitch{Class: PitchClassE, Accidental: Flat, PitchOffset: 2, SemitoneOffset: 3}
	got := TransposePitch(p, 5)
	assert.Equal(t, Pitch{Class: PitchClassE, Accidental: Flat, PitchOffset: 2, SemitoneOffset: 8}, got)
	assert.Equal(t, 3, p.SemitoneOffset)

	got = TransposePitch(p, -15)
	assert.Equal(t, -12, got.SemitoneOffset)
	assert.Equal(t, PitchClassE, got.Class)
}

func TestParsePitch(t *testing.T) {
	tests := map[string]Pitch{
		"C":   NewPitch(PitchClassC, Natural),
		"f#":  NewPitch(PitchClassF, Sharp),
		"Bb":  NewPitch(PitchClassB, Flat),
		"Gx":  NewPitch(PitchClassG, DoubleSharp),
		"G##": NewPitch(PitchClassG, DoubleSharp),
		"Dbb": NewPitch(PitchClassD, DoubleFlat),
		" A ": NewPitch(PitchClassA, Natural),
	}
	for in, want := range tests {
		got, err := ParsePitch(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "H", "C#b", "Ebbb", "7"} {
		_, err := ParsePitch(in)
		assert.ErrorIs(t, err, ErrInvalidPitchName, in)
	}
}

func TestPitchJSON(t *testing.T) {
	p := Pitch{Class: PitchClassF, Accidental: Sharp, PitchOffset: 3, SemitoneOffset: 6}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"F","accidental":"Sharp","pitchOffset":3,"semitoneOffset":6}`, string(data))

	var back Pitch
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"F","accidental":"TripleSharp"}`), &back))
}
