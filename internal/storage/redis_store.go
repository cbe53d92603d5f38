package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/verdantia/storefront-backend/internal/cart"
)

// RedisBlobStore keeps carts as plain string keys. Every write refreshes
// the key's TTL; a zero TTL keeps carts forever.
type RedisBlobStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisBlobStore(client redis.Cmdable, ttl time.Duration) *RedisBlobStore {
	return &RedisBlobStore{client: client, ttl: ttl}
}

func (s *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisBlobStore) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *RedisBlobStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
