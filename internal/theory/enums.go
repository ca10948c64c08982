package theory

import (
	"fmt"
	"strings"
)

// PitchClass is one of the seven diatonic letter names, ordered cyclically from C.
type PitchClass int

const (
	PitchClassC PitchClass = iota
	PitchClassD
	PitchClassE
	PitchClassF
	PitchClassG
	PitchClassA
	PitchClassB
)

const (
	diatonicSteps  = 7
	semitonesCount = 12
)

var pitchClassNames = [diatonicSteps]string{"C", "D", "E", "F", "G", "A", "B"}

// semitones above C for each natural letter
var semitonesFromC = [diatonicSteps]int{0, 2, 4, 5, 7, 9, 11}

// Semitones returns the distance in semitones from C to the natural pitch class.
func (p PitchClass) Semitones() int {
	return semitonesFromC[posMod(int(p), diatonicSteps)]
}

// Step advances the pitch class by n diatonic steps, wrapping in both directions.
func (p PitchClass) Step(n int) PitchClass {
	return PitchClass(posMod(int(p)+n, diatonicSteps))
}

func (p PitchClass) Valid() bool {
	return p >= PitchClassC && p <= PitchClassB
}

func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return pitchClassNames[p]
}

func (p PitchClass) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pitch class %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *PitchClass) UnmarshalText(text []byte) error {
	for i, name := range pitchClassNames {
		if strings.EqualFold(name, string(text)) {
			*p = PitchClass(i)
			return nil
		}
	}
	return fmt.Errorf("unknown pitch class %q", string(text))
}

// Accidental is a semitone modifier in the range [-2, 2].
type Accidental int

const (
	DoubleFlat  Accidental = -2
	Flat        Accidental = -1
	Natural     Accidental = 0
	Sharp       Accidental = 1
	DoubleSharp Accidental = 2
)

var accidentalNames = map[Accidental]string{
	DoubleFlat:  "DoubleFlat",
	Flat:        "Flat",
	Natural:     "Natural",
	Sharp:       "Sharp",
	DoubleSharp: "DoubleSharp",
}

var accidentalSymbols = map[Accidental]string{
	DoubleFlat:  "bb",
	Flat:        "b",
	Natural:     "",
	Sharp:       "#",
	DoubleSharp: "##",
}

// Offset returns the semitone modifier of the accidental.
func (a Accidental) Offset() int {
	return int(a)
}

func (a Accidental) Valid() bool {
	return a >= DoubleFlat && a <= DoubleSharp
}

func (a Accidental) String() string {
	if name, ok := accidentalNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Accidental(%d)", int(a))
}

// Symbol returns the ASCII spelling used in pitch names ("#", "b", "##", "bb").
func (a Accidental) Symbol() string {
	return accidentalSymbols[a]
}

func (a Accidental) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid accidental %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Accidental) UnmarshalText(text []byte) error {
	for acc, name := range accidentalNames {
		if strings.EqualFold(name, string(text)) {
			*a = acc
			return nil
		}
	}
	return fmt.Errorf("unknown accidental %q", string(text))
}

// accidentalFromOffset maps a semitone mismatch onto an accidental. Offsets
// outside [-2, 2] have no spelling and fall back to Natural.
func accidentalFromOffset(offset int) Accidental {
	acc := Accidental(offset)
	if !acc.Valid() {
		return Natural
	}
	return acc
}

// IntervalSize is the diatonic step count of an interval, Unison through Octave.
type IntervalSize int

const (
	Unison IntervalSize = iota
	Second
	Third
	Fourth
	Fifth
	Sixth
	Seventh
	Octave
)

var intervalSizeNames = [...]string{
	"Unison", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Octave",
}

func (s IntervalSize) Valid() bool {
	return s >= Unison && s <= Octave
}

// IsPerfect reports whether the size takes Perfect rather than Major/Minor qualities.
func (s IntervalSize) IsPerfect() bool {
	switch s {
	case Unison, Fourth, Fifth, Octave:
		return true
	}
	return false
}

func (s IntervalSize) String() string {
	if !s.Valid() {
		return fmt.Sprintf("IntervalSize(%d)", int(s))
	}
	return intervalSizeNames[s]
}

func (s IntervalSize) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid interval size %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *IntervalSize) UnmarshalText(text []byte) error {
	for i, name := range intervalSizeNames {
		if strings.EqualFold(name, string(text)) {
			*s = IntervalSize(i)
			return nil
		}
	}
	return fmt.Errorf("unknown interval size %q", string(text))
}

// IntervalQuality refines an interval size to semitone precision.
type IntervalQuality string

const (
	Diminished IntervalQuality = "Diminished"
	Minor      IntervalQuality = "Minor"
	Major      IntervalQuality = "Major"
	Perfect    IntervalQuality = "Perfect"
	Augmented  IntervalQuality = "Augmented"
)

var ValidQualities = []IntervalQuality{Diminished, Minor, Major, Perfect, Augmented}

func (q IntervalQuality) Valid() bool {
	for _, v := range ValidQualities {
		if q == v {
			return true
		}
	}
	return false
}

func (q *IntervalQuality) UnmarshalText(text []byte) error {
	for _, v := range ValidQualities {
		if strings.EqualFold(string(v), string(text)) {
			*q = v
			return nil
		}
	}
	return fmt.Errorf("unknown interval quality %q", string(text))
}

// posMod is a modulo whose result is always in [0, m).
func posMod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}
