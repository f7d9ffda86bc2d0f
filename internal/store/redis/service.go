package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Store is a BlobStore backed by Redis. Blobs never expire.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis blob store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Get retrieves a blob; redis.Nil is reported as absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, BlobKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get blob %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a blob without TTL
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, BlobKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	return nil
}

// Keys lists the blob keys currently stored, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, KeyPrefixBlob+"*", 100).Iterator()
	for iter.Next(ctx) {
		if key, ok := ExtractBlobKey(iter.Val()); ok {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan blob keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
