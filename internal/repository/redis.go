package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/model"
	"github.com/redis/go-redis/v9"
)

const scaleIndexKey = "scales"

// RedisRepository stores each scale as a JSON document under scale:<id> and
// keeps the set of ids under "scales".
type RedisRepository struct {
	redis *redis.Client
}

func NewRedisRepository(redisClient *redis.Client) *RedisRepository {
	return &RedisRepository{redis: redisClient}
}

func scaleKey(id uuid.UUID) string {
	return fmt.Sprintf("scale:%s", id)
}

func (r *RedisRepository) List(ctx context.Context) ([]model.ScaleDefinition, error) {
	ids, err := r.redis.SMembers(ctx, scaleIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.ScaleDefinition{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "scale:" + id
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	scales := make([]model.ScaleDefinition, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			// index entry without a document
			continue
		}
		var s model.ScaleDefinition
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scale: %w", err)
		}
		scales = append(scales, s)
	}
	sortScales(scales)
	return scales, nil
}

func (r *RedisRepository) Get(ctx context.Context, id uuid.UUID) (*model.ScaleDefinition, error) {
	data, err := r.redis.Get(ctx, scaleKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var s model.ScaleDefinition
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scale: %w", err)
	}
	return &s, nil
}

func (r *RedisRepository) Create(ctx context.Context, scale *model.ScaleDefinition) error {
	return r.save(ctx, scale)
}

// Update only overwrites an existing document; the index entry is left untouched.
func (r *RedisRepository) Update(ctx context.Context, scale *model.ScaleDefinition) error {
	data, err := json.Marshal(scale)
	if err != nil {
		return fmt.Errorf("failed to marshal scale: %w", err)
	}
	ok, err := r.redis.SetXX(ctx, scaleKey(scale.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var del *redis.IntCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, scaleKey(id))
		pipe.SRem(ctx, scaleIndexKey, id.String())
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisRepository) Count(ctx context.Context) (int, error) {
	n, err := r.redis.SCard(ctx, scaleIndexKey).Result()
	return int(n), err
}

func (r *RedisRepository) save(ctx context.Context, scale *model.ScaleDefinition) error {
	data, err := json.Marshal(scale)
	if err != nil {
		return fmt.Errorf("failed to marshal scale: %w", err)
	}
	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scaleKey(scale.ID), data, 0)
		pipe.SAdd(ctx, scaleIndexKey, scale.ID.String())
		return nil
	})
	return err
}
