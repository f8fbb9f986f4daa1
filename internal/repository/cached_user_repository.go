package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/user-service/internal/domain"
)

const existsKeyPrefix = "user:exists:"

// cachedUserRepository remembers positive existence checks in Redis.
// Users are never deleted, so a cached "exists" cannot go stale.
type cachedUserRepository struct {
	UserRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedUserRepository decorates base with a Redis-backed Exists cache.
// Redis failures fall through to base.
func NewCachedUserRepository(base UserRepository, client *redis.Client, ttl time.Duration) UserRepository {
	if client == nil || ttl <= 0 {
		return base
	}
	return &cachedUserRepository{UserRepository: base, client: client, ttl: ttl}
}

func (r *cachedUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	key := existsKeyPrefix + id
	if n, err := r.client.Exists(ctx, key).Result(); err == nil && n > 0 {
		return true, nil
	}

	exists, err := r.UserRepository.Exists(ctx, id)
	if err != nil || !exists {
		return exists, err
	}
	_ = r.client.Set(ctx, key, 1, r.ttl).Err()
	return true, nil
}

func (r *cachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.UserRepository.Create(ctx, user); err != nil {
		return err
	}
	_ = r.client.Set(ctx, existsKeyPrefix+user.ID, 1, r.ttl).Err()
	return nil
}
