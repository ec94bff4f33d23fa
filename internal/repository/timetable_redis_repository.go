package repository

import (
	"context"
	"errors"
	"time"

	"gradebook_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// TimetableRedisRepository 课表快照以 JSON 字符串存在 redis 中
type TimetableRedisRepository struct {
	Redis *redis.Client
	// 0 表示不过期
	TTL time.Duration
}

func NewTimetableRedisRepository(rdb *redis.Client) *TimetableRedisRepository {
	return &TimetableRedisRepository{Redis: rdb}
}

func (r *TimetableRedisRepository) Load(ctx context.Context, key string) (model.Timetables, error) {
	data, err := r.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeTimetables(data)
}

func (r *TimetableRedisRepository) Save(ctx context.Context, key string, t model.Timetables) error {
	payload, err := encodeTimetables(t)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, key, payload, r.TTL).Err()
}
