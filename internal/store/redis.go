package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/dogtrainer/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Repository using one Redis JSON document per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed repository and verifies the connection.
func NewRedis(addr string) (Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func dogKey(userID string) string {
	return "dog:" + userID
}

// GetDog retrieves the profile document for a user.
func (s *RedisStore) GetDog(ctx context.Context, userID string) (*domain.Dog, error) {
	val, err := s.client.Get(ctx, dogKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dog: %w", err)
	}

	var dog domain.Dog
	if err := json.Unmarshal([]byte(val), &dog); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	dog.Normalize()

	return &dog, nil
}

// PutDog writes the full profile document for a user.
func (s *RedisStore) PutDog(ctx context.Context, userID string, dog *domain.Dog) error {
	now := time.Now()
	if dog.CreatedAt.IsZero() {
		dog.CreatedAt = now
	}
	dog.UpdatedAt = now

	profile, err := json.Marshal(dog)
	if err != nil {
		return fmt.Errorf("encode profile document: %w", err)
	}

	// Profiles are kept indefinitely; retention is an external policy.
	if err := s.client.Set(ctx, dogKey(userID), profile, 0).Err(); err != nil {
		return fmt.Errorf("put dog: %w", err)
	}
	return nil
}

// Ping verifies connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
