package theory

import (
	"errors"
	"fmt"
)

// ErrInvalidIntervalCombination is returned when a quality is not admitted by
// an interval size, e.g. a Perfect Second or a Major Fifth.
var ErrInvalidIntervalCombination = errors.New("invalid interval combination")

// Interval is an immutable interval value. Offsets may span more than one
// octave; only Size and Quality are derived from the single-octave view.
type Interval struct {
	Size           IntervalSize    `json:"name"`
	Quality        IntervalQuality `json:"quality"`
	PitchOffset    int             `json:"pitchOffset"`
	SemitoneOffset int             `json:"semitoneOffset"`
}

func (i Interval) String() string {
	return fmt.Sprintf("%s %s", i.Quality, i.Size)
}

// qualityTable lists, per size, the semitone counts (mod 12) that carry a named
// quality. Anything absent is Diminished.
var qualityTable = map[IntervalSize]map[int]IntervalQuality{
	Unison:  {0: Perfect, 1: Augmented},
	Second:  {1: Minor, 2: Major, 3: Augmented},
	Third:   {3: Minor, 4: Major, 5: Augmented},
	Fourth:  {5: Perfect, 6: Augmented},
	Fifth:   {7: Perfect, 8: Augmented},
	Sixth:   {8: Minor, 9: Major, 10: Augmented},
	Seventh: {10: Minor, 11: Major, 0: Augmented},
	Octave:  {0: Perfect, 1: Augmented},
}

// ClassifyInterval returns the quality of an interval of the given size
// spanning the given number of semitones. It is total: every semitone value
// not listed for the size is Diminished.
func ClassifyInterval(size IntervalSize, semitones int) IntervalQuality {
	if q, ok := qualityTable[size][posMod(semitones, semitonesCount)]; ok {
		return q
	}
	return Diminished
}

// CreateInterval builds an interval from raw offsets. Size and quality come
// from the offsets reduced to one octave; the returned offsets are the ones
// given, so compound intervals keep their span.
func CreateInterval(semitoneOffset, pitchOffset int) Interval {
	size := IntervalSize(posMod(pitchOffset, diatonicSteps))
	return Interval{
		Size:           size,
		Quality:        ClassifyInterval(size, posMod(semitoneOffset, semitonesCount)),
		PitchOffset:    pitchOffset,
		SemitoneOffset: semitoneOffset,
	}
}

// InvertInterval returns the complement of the interval within an octave.
// The inversion of an exact octave is a unison.
func InvertInterval(i Interval) Interval {
	if i.PitchOffset == diatonicSteps || i.SemitoneOffset == semitonesCount {
		return CreateInterval(0, 0)
	}
	return CreateInterval(semitonesCount-i.SemitoneOffset, diatonicSteps-i.PitchOffset)
}

// AddIntervals sums the raw offsets of a and b and reclassifies the result.
func AddIntervals(a, b Interval) Interval {
	return CreateInterval(a.SemitoneOffset+b.SemitoneOffset, a.PitchOffset+b.PitchOffset)
}

// Normalize reduces the interval to a single octave, storing the reduced offsets.
func (i Interval) Normalize() Interval {
	return CreateInterval(posMod(i.SemitoneOffset, semitonesCount), posMod(i.PitchOffset, diatonicSteps))
}

// base semitone count of the Perfect or Major form of each size
var baseSemitones = [...]int{0, 2, 4, 5, 7, 9, 11, 12}

// GetSemitoneOffset returns the canonical semitone count for a size/quality
// pair. Perfect sizes admit Diminished, Perfect and Augmented; the others admit
// Diminished, Minor, Major and Augmented.
func GetSemitoneOffset(size IntervalSize, quality IntervalQuality) (int, error) {
	if !size.Valid() {
		return 0, fmt.Errorf("%w: unknown size %d", ErrInvalidIntervalCombination, int(size))
	}
	base := baseSemitones[size]

	if size.IsPerfect() {
		switch quality {
		case Diminished:
			return base - 1, nil
		case Perfect:
			return base, nil
		case Augmented:
			return base + 1, nil
		}
	} else {
		switch quality {
		case Diminished:
			return base - 2, nil
		case Minor:
			return base - 1, nil
		case Major:
			return base, nil
		case Augmented:
			return base + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %s", ErrInvalidIntervalCombination, quality, size)
}

// GetPitchOffset returns the number of diatonic steps spanned by the size.
func GetPitchOffset(size IntervalSize) int {
	return int(size)
}

// NewInterval builds the canonical interval for a size/quality pair. The
// stored size and quality are the requested ones, so an Octave stays an Octave.
func NewInterval(size IntervalSize, quality IntervalQuality) (Interval, error) {
	semitones, err := GetSemitoneOffset(size, quality)
	if err != nil {
		return Interval{}, err
	}
	return Interval{
		Size:           size,
		Quality:        quality,
		PitchOffset:    GetPitchOffset(size),
		SemitoneOffset: semitones,
	}, nil
}

// MustInterval is NewInterval for static tables; it panics on an invalid pair.
func MustInterval(size IntervalSize, quality IntervalQuality) Interval {
	i, err := NewInterval(size, quality)
	if err != nil {
		panic(err)
	}
	return i
}
