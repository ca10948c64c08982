package theory

// GenerateScalePitches spells a scale from its root. The first element is the
// root itself; every following pitch is the root moved by the corresponding
// interval. Intervals are measured from the root, never from the previous pitch.
func GenerateScalePitches(root Pitch, intervals []Interval) []Pitch {
	pitches := make([]Pitch, 0, len(intervals)+1)
	pitches = append(pitches, root)
	for _, interval := range intervals {
		pitches = append(pitches, GetPitch(root, interval))
	}
	return pitches
}

// MajorScaleIntervals returns the seven intervals of the major scale measured
// from the tonic, ending on the octave.
func MajorScaleIntervals() []Interval {
	return []Interval{
		MustInterval(Second, Major),
		MustInterval(Third, Major),
		MustInterval(Fourth, Perfect),
		MustInterval(Fifth, Perfect),
		MustInterval(Sixth, Major),
		MustInterval(Seventh, Major),
		MustInterval(Octave, Perfect),
	}
}
