package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verdantia/storefront-backend/pkg/logger"
)

// BlobStore is a key-value store holding one serialized cart per key.
// Get returns ErrBlobNotFound for a missing key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Persistence binds a BlobStore to a single cart key. Neither method
// returns an error: write failures are logged and reported to the
// observer, read failures are treated as an absent blob.
type Persistence struct {
	store    BlobStore
	key      string
	observer Observer
}

func NewPersistence(store BlobStore, key string, observer Observer) *Persistence {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Persistence{store: store, key: key, observer: observer}
}

// Key returns the namespaced key this adapter writes to.
func (p *Persistence) Key() string {
	return p.key
}

// Save serializes s and writes it to the store.
func (p *Persistence) Save(ctx context.Context, s State) {
	data, err := Encode(s)
	if err == nil {
		err = p.store.Put(ctx, p.key, data)
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPersistenceWrite, err)
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"key":   p.key,
			"lines": len(s.Lines),
		})
		p.observer.PersistenceFailed(err)
		return
	}

	logger.Debug("Cart persisted", map[string]interface{}{
		"key":   p.key,
		"bytes": len(data),
	})
}

// Load returns the decoded blob, or nil when it is absent or unreadable.
func (p *Persistence) Load(ctx context.Context) any {
	data, err := p.store.Get(ctx, p.key)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			logger.Warn("Failed to read persisted cart, starting empty", map[string]interface{}{
				"key":   p.key,
				"error": err.Error(),
			})
		}
		return nil
	}
	blob := Decode(data)
	if blob == nil {
		logger.Warn("Persisted cart is not valid JSON, starting empty", map[string]interface{}{
			"key":   p.key,
			"bytes": len(data),
		})
	}
	return blob
}

// MemoryStore is an in-process BlobStore.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
