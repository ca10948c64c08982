package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/model"
)

// MemoryRepository keeps scales in process memory. Used for local runs and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	scales map[uuid.UUID]model.ScaleDefinition
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		scales: make(map[uuid.UUID]model.ScaleDefinition),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]model.ScaleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scales := make([]model.ScaleDefinition, 0, len(r.scales))
	for _, s := range r.scales {
		scales = append(scales, clone(&s))
	}
	sortScales(scales)
	return scales, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScaleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scales[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(&s)
	return &c, nil
}

func (r *MemoryRepository) Create(ctx context.Context, scale *model.ScaleDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scales[scale.ID] = clone(scale)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, scale *model.ScaleDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scales[scale.ID]; !ok {
		return ErrNotFound
	}
	r.scales[scale.ID] = clone(scale)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scales[id]; !ok {
		return ErrNotFound
	}
	delete(r.scales, id)
	return nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scales), nil
}
