package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "cart:user:"

// Store 购物车会话存储
type Store interface {
	Load(ctx context.Context, userID int64) (*Cart, error)
	Save(ctx context.Context, userID int64, c *Cart) error
	Delete(ctx context.Context, userID int64) error
}

// RedisStore 以用户为键保存在 Redis
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Load 读取购物车，不存在时返回空购物车
func (s *RedisStore) Load(ctx context.Context, userID int64) (*Cart, error) {
	data, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return Decode(data)
}

// Save 保存购物车，空购物车直接删除键
func (s *RedisStore) Save(ctx context.Context, userID int64, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, userID)
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}
