package storage

import (
	"context"
	"errors"

	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/cart"
	"gorm.io/gorm"
)

// GormBlobStore keeps carts in the cart_blobs table.
type GormBlobStore struct {
	repo repository.CartBlobRepository
}

func NewGormBlobStore(repo repository.CartBlobRepository) *GormBlobStore {
	return &GormBlobStore{repo: repo}
}

func (s *GormBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	blob, err := s.repo.Get(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cart.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(blob.Data), nil
}

func (s *GormBlobStore) Put(_ context.Context, key string, data []byte) error {
	return s.repo.Upsert(key, data)
}

func (s *GormBlobStore) Delete(_ context.Context, key string) error {
	return s.repo.Delete(key)
}
