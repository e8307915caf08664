package filters

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// RedisStorage keeps the serialized filter blob in Redis, one key per user.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage constructs a RedisStorage.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Load(ctx context.Context, userID int64) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisStorage) Save(ctx context.Context, userID int64, data []byte) error {
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

func (s *RedisStorage) Clear(ctx context.Context, userID int64) error {
	err := s.client.Del(ctx, s.key(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (s *RedisStorage) key(userID int64) string {
	return "filters:user:" + strconv.FormatInt(userID, 10)
}
