package service

import (
	"context"
	"fmt"

	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/theory"
)

type seedScale struct {
	names       []string
	description string
	intervals   []theory.Interval
}

func iv(size theory.IntervalSize, quality theory.IntervalQuality) theory.Interval {
	return theory.MustInterval(size, quality)
}

var (
	min2  = iv(theory.Second, theory.Minor)
	maj2  = iv(theory.Second, theory.Major)
	min3  = iv(theory.Third, theory.Minor)
	maj3  = iv(theory.Third, theory.Major)
	perf4 = iv(theory.Fourth, theory.Perfect)
	aug4  = iv(theory.Fourth, theory.Augmented)
	dim5  = iv(theory.Fifth, theory.Diminished)
	perf5 = iv(theory.Fifth, theory.Perfect)
	aug5  = iv(theory.Fifth, theory.Augmented)
	min6  = iv(theory.Sixth, theory.Minor)
	maj6  = iv(theory.Sixth, theory.Major)
	aug6  = iv(theory.Sixth, theory.Augmented)
	min7  = iv(theory.Seventh, theory.Minor)
	maj7  = iv(theory.Seventh, theory.Major)
	perf8 = iv(theory.Octave, theory.Perfect)
)

var defaultScales = []seedScale{
	{[]string{"Major", "Ionian"}, "Diatonic major scale", theory.MajorScaleIntervals()},
	{[]string{"Natural Minor", "Aeolian"}, "Diatonic natural minor scale", []theory.Interval{maj2, min3, perf4, perf5, min6, min7, perf8}},
	{[]string{"Harmonic Minor"}, "Natural minor with a raised seventh", []theory.Interval{maj2, min3, perf4, perf5, min6, maj7, perf8}},
	{[]string{"Melodic Minor", "Jazz Minor"}, "Ascending melodic minor", []theory.Interval{maj2, min3, perf4, perf5, maj6, maj7, perf8}},
	{[]string{"Dorian"}, "Second mode of the major scale", []theory.Interval{maj2, min3, perf4, perf5, maj6, min7, perf8}},
	{[]string{"Phrygian"}, "Third mode of the major scale", []theory.Interval{min2, min3, perf4, perf5, min6, min7, perf8}},
	{[]string{"Lydian"}, "Fourth mode of the major scale", []theory.Interval{maj2, maj3, aug4, perf5, maj6, maj7, perf8}},
	{[]string{"Mixolydian", "Dominant"}, "Fifth mode of the major scale", []theory.Interval{maj2, maj3, perf4, perf5, maj6, min7, perf8}},
	{[]string{"Locrian"}, "Seventh mode of the major scale", []theory.Interval{min2, min3, perf4, dim5, min6, min7, perf8}},
	{[]string{"Major Pentatonic"}, "Five-note major scale", []theory.Interval{maj2, maj3, perf5, maj6, perf8}},
	{[]string{"Minor Pentatonic"}, "Five-note minor scale", []theory.Interval{min3, perf4, perf5, min7, perf8}},
	{[]string{"Whole Tone"}, "Six equal whole steps", []theory.Interval{maj2, maj3, aug4, aug5, aug6, perf8}},
}

// DefaultScaleRequests returns the built-in catalog as create requests
func DefaultScaleRequests() []model.ScaleRequest {
	reqs := make([]model.ScaleRequest, len(defaultScales))
	for i, s := range defaultScales {
		desc := s.description
		reqs[i] = model.ScaleRequest{
			Names:       append([]string(nil), s.names...),
			Description: &desc,
			Intervals:   append([]theory.Interval(nil), s.intervals...),
		}
	}
	return reqs
}

// Seed fills an empty catalog with the default scales and returns how many were added.
func (s *ScaleService) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count scales: %w", err)
	}
	if n > 0 {
		logger.Debug("Catalog already populated, skipping seed", logger.Fields{"count": n})
		return 0, nil
	}

	reqs := DefaultScaleRequests()
	for i := range reqs {
		if _, err := s.Create(ctx, &reqs[i]); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", reqs[i].Names[0], err)
		}
	}
	return len(reqs), nil
}
