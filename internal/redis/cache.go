package redis

import (
	"context"
	"encoding/json"
	"time"

	"cipher-chat/internal/domain/user"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const usersCacheKey = "users:all"

// cachedUser mirrors user.User without the password hash.
type cachedUser struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CacheStore keeps the user directory in Redis for the sidebar listing.
type CacheStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, ttl time.Duration) *CacheStore {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &CacheStore{client: client, ttl: ttl}
}

// GetUsers returns the cached directory. ok is false on a cache miss.
func (c *CacheStore) GetUsers(ctx context.Context) ([]user.User, bool, error) {
	data, err := c.client.Get(ctx, usersCacheKey).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached []cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}

	users := make([]user.User, 0, len(cached))
	for _, cu := range cached {
		users = append(users, user.User{
			ID:         cu.ID,
			FullName:   cu.FullName,
			Email:      cu.Email,
			ProfilePic: cu.ProfilePic,
			CreatedAt:  cu.CreatedAt,
			UpdatedAt:  cu.UpdatedAt,
		})
	}
	return users, true, nil
}

// SetUsers caches the directory. Password hashes are never written.
func (c *CacheStore) SetUsers(ctx context.Context, users []user.User) error {
	cached := make([]cachedUser, 0, len(users))
	for _, u := range users {
		cached = append(cached, cachedUser{
			ID:         u.ID,
			FullName:   u.FullName,
			Email:      u.Email,
			ProfilePic: u.ProfilePic,
			CreatedAt:  u.CreatedAt,
			UpdatedAt:  u.UpdatedAt,
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, usersCacheKey, data, c.ttl).Err()
}

// InvalidateUsers drops the cached directory.
func (c *CacheStore) InvalidateUsers(ctx context.Context) error {
	return c.client.Del(ctx, usersCacheKey).Err()
}
