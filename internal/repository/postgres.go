package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/theory"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// scaleRecord is the relational row. Names and intervals are JSON-encoded columns.
type scaleRecord struct {
	ID          string            `gorm:"primaryKey;type:uuid"`
	Names       []string          `gorm:"serializer:json;type:jsonb;not null"`
	Description *string           `gorm:"type:text"`
	Intervals   []theory.Interval `gorm:"serializer:json;type:jsonb;not null"`
	CreatedAt   time.Time         `gorm:"index"`
	UpdatedAt   time.Time
}

func (scaleRecord) TableName() string {
	return "scales"
}

func toRecord(s *model.ScaleDefinition) *scaleRecord {
	c := clone(s)
	return &scaleRecord{
		ID:          c.ID.String(),
		Names:       c.Names,
		Description: c.Description,
		Intervals:   c.Intervals,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r *scaleRecord) toModel() (*model.ScaleDefinition, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	return &model.ScaleDefinition{
		ID:          id,
		Names:       r.Names,
		Description: r.Description,
		Intervals:   r.Intervals,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// PostgresRepository stores scales through GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// OpenPostgres connects to the database and migrates the scales table.
func OpenPostgres(dsn string) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return NewPostgresRepository(db)
}

func NewPostgresRepository(db *gorm.DB) (*PostgresRepository, error) {
	if err := db.AutoMigrate(&scaleRecord{}); err != nil {
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]model.ScaleDefinition, error) {
	var records []scaleRecord
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&records).Error; err != nil {
		return nil, err
	}

	scales := make([]model.ScaleDefinition, 0, len(records))
	for i := range records {
		s, err := records[i].toModel()
		if err != nil {
			return nil, err
		}
		scales = append(scales, *s)
	}
	return scales, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScaleDefinition, error) {
	var record scaleRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record.toModel()
}

func (r *PostgresRepository) Create(ctx context.Context, scale *model.ScaleDefinition) error {
	return r.db.WithContext(ctx).Create(toRecord(scale)).Error
}

// Update rewrites the row in a single UPDATE so a concurrent delete is never undone.
func (r *PostgresRepository) Update(ctx context.Context, scale *model.ScaleDefinition) error {
	record := toRecord(scale)
	res := r.db.WithContext(ctx).
		Model(&scaleRecord{ID: record.ID}).
		Select("names", "description", "intervals", "updated_at").
		Updates(record)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&scaleRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&scaleRecord{}).Count(&n).Error
	return int(n), err
}
