package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/internal/db"
)

// exerciseStore runs the contract every cart.BlobStore must satisfy.
func exerciseStore(t *testing.T, store cart.BlobStore) {
	ctx := context.Background()

	_, err := store.Get(ctx, "cart:missing")
	assert.ErrorIs(t, err, cart.ErrBlobNotFound)

	require.NoError(t, store.Put(ctx, "cart:abc", []byte(`{"lines":[]}`)))
	require.NoError(t, store.Put(ctx, "cart:abc", []byte(`{"lines":[{"productId":"7"}]}`)))

	data, err := store.Get(ctx, "cart:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lines":[{"productId":"7"}]}`, string(data))

	require.NoError(t, store.Delete(ctx, "cart:abc"))
	_, err = store.Get(ctx, "cart:abc")
	assert.ErrorIs(t, err, cart.ErrBlobNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, cart.NewMemoryStore())
}

func TestGormBlobStore(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	exerciseStore(t, NewGormBlobStore(repository.NewCartBlobRepository(testDB)))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3BlobStore(t *testing.T) {
	fake := newFakeS3()
	store := NewS3BlobStore(fake, "carts-bucket", "carts")
	exerciseStore(t, store)

	require.NoError(t, store.Put(context.Background(), "verdantia:cart:s1", []byte(`{}`)))
	assert.Contains(t, fake.objects, "carts-bucket/carts/verdantia:cart:s1.json")
}

func TestRedisBlobStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	store := NewRedisBlobStore(client, time.Minute)
	exerciseStore(t, store)

	require.NoError(t, store.Put(context.Background(), "cart:ttl", []byte(`{}`)))
	ttl, err := client.TTL(context.Background(), "cart:ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	client.Del(context.Background(), "cart:ttl")
}
