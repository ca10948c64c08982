package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/theory"
)

// ErrNotFound is returned when no scale has the requested id.
var ErrNotFound = errors.New("scale not found")

// Storage providers
const (
	ProviderMemory   = "memory"
	ProviderRedis    = "redis"
	ProviderPostgres = "postgres"
)

// ScaleRepository persists scale definitions.
type ScaleRepository interface {
	List(ctx context.Context) ([]model.ScaleDefinition, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ScaleDefinition, error)
	Create(ctx context.Context, scale *model.ScaleDefinition) error
	Update(ctx context.Context, scale *model.ScaleDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// sortScales orders a listing by creation time, then id.
func sortScales(scales []model.ScaleDefinition) {
	sort.Slice(scales, func(i, j int) bool {
		if !scales[i].CreatedAt.Equal(scales[j].CreatedAt) {
			return scales[i].CreatedAt.Before(scales[j].CreatedAt)
		}
		return scales[i].ID.String() < scales[j].ID.String()
	})
}

// clone copies the slices of a scale so stored values never alias caller memory.
func clone(s *model.ScaleDefinition) model.ScaleDefinition {
	c := *s
	c.Names = append([]string(nil), s.Names...)
	c.Intervals = append([]theory.Interval(nil), s.Intervals...)
	if s.Description != nil {
		d := *s.Description
		c.Description = &d
	}
	return c
}
