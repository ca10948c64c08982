package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/repository"
	"github.com/makeasinger/scales/internal/theory"
)

// ScaleService validates catalog requests and delegates storage to a repository.
type ScaleService struct {
	repo repository.ScaleRepository
	now  func() time.Time
}

func NewScaleService(repo repository.ScaleRepository) *ScaleService {
	return &ScaleService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns every scale in the catalog
func (s *ScaleService) List(ctx context.Context) (*model.ScaleListResponse, error) {
	scales, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scales: %w", err)
	}
	return &model.ScaleListResponse{
		Scales: scales,
		Total:  len(scales),
	}, nil
}

// Get returns a single scale
func (s *ScaleService) Get(ctx context.Context, id uuid.UUID) (*model.ScaleDefinition, error) {
	scale, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return scale, nil
}

// Create validates and stores a new scale
func (s *ScaleService) Create(ctx context.Context, req *model.ScaleRequest) (*model.ScaleDefinition, error) {
	names, err := validateScale(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scale := &model.ScaleDefinition{
		ID:          uuid.New(),
		Names:       names,
		Description: req.Description,
		Intervals:   req.Intervals,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, scale); err != nil {
		return nil, fmt.Errorf("failed to save scale: %w", err)
	}

	logger.Info("Scale created", logger.Fields{"scale_id": scale.ID.String(), "name": scale.PrimaryName()})
	return scale, nil
}

// Update replaces the names, description and intervals of an existing scale
func (s *ScaleService) Update(ctx context.Context, id uuid.UUID, req *model.ScaleRequest) (*model.ScaleDefinition, error) {
	names, err := validateScale(req)
	if err != nil {
		return nil, err
	}

	scale, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	scale.Names = names
	scale.Description = req.Description
	scale.Intervals = req.Intervals
	scale.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, scale); err != nil {
		return nil, translate(err)
	}

	logger.Info("Scale updated", logger.Fields{"scale_id": id.String()})
	return scale, nil
}

// Delete removes a scale
func (s *ScaleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	logger.Info("Scale deleted", logger.Fields{"scale_id": id.String()})
	return nil
}

// GeneratePitches spells the stored scale from the given root
func (s *ScaleService) GeneratePitches(ctx context.Context, id uuid.UUID, root theory.Pitch) (*model.ScalePitchesResponse, error) {
	scale, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pitches := theory.GenerateScalePitches(root, scale.Intervals)
	return &model.ScalePitchesResponse{
		ScaleID: scale.ID,
		Name:    scale.PrimaryName(),
		Root:    root,
		Pitches: pitches,
		Spelled: Spell(pitches),
	}, nil
}

// Spell returns the display names of the pitches
func Spell(pitches []theory.Pitch) []string {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.String()
	}
	return names
}

// validateScale checks the catalog invariants and returns the trimmed names.
func validateScale(req *model.ScaleRequest) ([]string, error) {
	if len(req.Names) == 0 {
		return nil, &ValidationError{Field: "names", Message: "at least one name is required"}
	}

	names := make([]string, len(req.Names))
	for i, name := range req.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("names[%d]", i), Message: "name must not be blank"}
		}
		names[i] = name
	}

	if len(req.Intervals) == 0 {
		return nil, &ValidationError{Field: "intervals", Message: "at least one interval is required"}
	}
	for i, interval := range req.Intervals {
		if !interval.Size.Valid() || !interval.Quality.Valid() {
			return nil, &ValidationError{Field: fmt.Sprintf("intervals[%d]", i), Message: "unknown interval name or quality"}
		}
	}

	return names, nil
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrScaleNotFound
	}
	return err
}
