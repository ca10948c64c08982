package model

import "github.com/makeasinger/scales/internal/theory"

// ClassifyRequest asks for the quality of a size spanning a number of semitones
type ClassifyRequest struct {
	Size      *theory.IntervalSize `json:"name" validate:"required"`
	Semitones *int                 `json:"semitones" validate:"required"`
}

type ClassifyResponse struct {
	Quality theory.IntervalQuality `json:"quality"`
}

// CreateIntervalRequest builds an interval from raw offsets
type CreateIntervalRequest struct {
	SemitoneOffset int `json:"semitoneOffset"`
	PitchOffset    int `json:"pitchOffset"`
}

// NamedIntervalRequest builds the canonical interval for a size and quality
type NamedIntervalRequest struct {
	Size    *theory.IntervalSize   `json:"name" validate:"required"`
	Quality theory.IntervalQuality `json:"quality" validate:"required,oneof=Diminished Minor Major Perfect Augmented"`
}

type InvertIntervalRequest struct {
	Interval theory.Interval `json:"interval"`
}

type AddIntervalsRequest struct {
	A theory.Interval `json:"a"`
	B theory.Interval `json:"b"`
}

// ApplyIntervalRequest moves a pitch by an interval
type ApplyIntervalRequest struct {
	Pitch    theory.Pitch    `json:"pitch"`
	Interval theory.Interval `json:"interval"`
}

type IntervalBetweenRequest struct {
	From theory.Pitch `json:"from"`
	To   theory.Pitch `json:"to"`
}

type TransposeRequest struct {
	Pitch     theory.Pitch `json:"pitch"`
	Semitones int          `json:"semitones"`
}

// GenerateScaleRequest spells an ad-hoc interval list from a root
type GenerateScaleRequest struct {
	Root      theory.Pitch      `json:"root"`
	Intervals []theory.Interval `json:"intervals" validate:"omitempty,max=64"`
}

type GenerateScaleResponse struct {
	Pitches []theory.Pitch `json:"pitches"`
	Spelled []string       `json:"spelled"`
}
