package theory

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPitchName = errors.New("invalid pitch name")

// Pitch is an immutable spelled pitch. PitchOffset and SemitoneOffset are
// cumulative displacements from a reference pitch (usually a scale root), not
// octave registers.
type Pitch struct {
	Class          PitchClass `json:"name"`
	Accidental     Accidental `json:"accidental"`
	PitchOffset    int        `json:"pitchOffset"`
	SemitoneOffset int        `json:"semitoneOffset"`
}

// NewPitch returns a pitch with zero offsets.
func NewPitch(class PitchClass, acc Accidental) Pitch {
	return Pitch{Class: class, Accidental: acc}
}

// String spells the pitch, e.g. "C", "F#", "Bb", "G##".
func (p Pitch) String() string {
	return p.Class.String() + p.Accidental.Symbol()
}

// absoluteSemitone is the pitch's semitone distance above C, accidental included.
func (p Pitch) absoluteSemitone() int {
	return p.Class.Semitones() + p.Accidental.Offset()
}

// GetPitch applies an interval to start and spells the resulting pitch.
func GetPitch(start Pitch, interval Interval) Pitch {
	class := start.Class.Step(interval.PitchOffset)

	expected := posMod(start.absoluteSemitone()+interval.SemitoneOffset, semitonesCount)
	actual := class.Semitones()

	offset := expected - actual
	if offset > 6 {
		offset -= semitonesCount
	} else if offset < -6 {
		offset += semitonesCount
	}

	return Pitch{
		Class:          class,
		Accidental:     accidentalFromOffset(offset),
		PitchOffset:    start.PitchOffset + interval.PitchOffset,
		SemitoneOffset: start.SemitoneOffset + interval.SemitoneOffset,
	}
}

// GetIntervalBetween returns the ascending interval from one pitch to another,
// reduced to a single octave. Unlike CreateInterval the stored offsets are the
// reduced ones.
func GetIntervalBetween(from, to Pitch) Interval {
	pitchOffset := to.PitchOffset - from.PitchOffset
	for pitchOffset < 0 {
		pitchOffset += diatonicSteps
	}
	semitoneOffset := to.SemitoneOffset - from.SemitoneOffset
	for semitoneOffset < 0 {
		semitoneOffset += semitonesCount
	}
	return CreateInterval(semitoneOffset%semitonesCount, pitchOffset%diatonicSteps)
}

// TransposePitch shifts the pitch's semitone counter only; the spelling is kept.
func TransposePitch(p Pitch, semitones int) Pitch {
	p.SemitoneOffset += semitones
	return p
}

// ParsePitch reads a spelled pitch such as "C", "f#", "Bb", "Gx", "G##" or "Dbb".
// The returned pitch has zero offsets.
func ParsePitch(name string) (Pitch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Pitch{}, fmt.Errorf("%w: empty", ErrInvalidPitchName)
	}

	var class PitchClass
	if err := class.UnmarshalText([]byte(name[:1])); err != nil {
		return Pitch{}, fmt.Errorf("%w: %q", ErrInvalidPitchName, name)
	}

	var acc Accidental
	switch rest := name[1:]; rest {
	case "":
		acc = Natural
	case "#", "s":
		acc = Sharp
	case "##", "x", "ss":
		acc = DoubleSharp
	case "b", "f":
		acc = Flat
	case "bb", "ff":
		acc = DoubleFlat
	default:
		return Pitch{}, fmt.Errorf("%w: %q", ErrInvalidPitchName, name)
	}

	return NewPitch(class, acc), nil
}
