package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/theory"
)

// ScaleDefinition is a catalog entry. The first name is the primary name.
type ScaleDefinition struct {
	ID          uuid.UUID         `json:"id"`
	Names       []string          `json:"names"`
	Description *string           `json:"description,omitempty"`
	Intervals   []theory.Interval `json:"intervals"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// PrimaryName returns the first name of the scale.
func (s *ScaleDefinition) PrimaryName() string {
	if len(s.Names) == 0 {
		return ""
	}
	return s.Names[0]
}

// ScaleRequest is the body of create and update requests
type ScaleRequest struct {
	Names       []string          `json:"names" validate:"required,min=1,dive,required"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Intervals   []theory.Interval `json:"intervals" validate:"required,min=1"`
}

// ScaleListResponse wraps the catalog listing
type ScaleListResponse struct {
	Scales []ScaleDefinition `json:"scales"`
	Total  int               `json:"total"`
}

// ScalePitchesResponse is a scale spelled from a concrete root
type ScalePitchesResponse struct {
	ScaleID uuid.UUID      `json:"scaleId"`
	Name    string         `json:"name"`
	Root    theory.Pitch   `json:"root"`
	Pitches []theory.Pitch `json:"pitches"`
	Spelled []string       `json:"spelled"`
}
