package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Karan-Salvi/FormVista-sub000/internal/database"
)

// zstdMagic opens every zstd frame. JSON text never starts with it, so it
// doubles as the marker for compressed payloads.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Store is the key-value protocol the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// RedisStore is a Store backed by Redis. Values at or above the threshold
// are zstd-compressed before they are written.
type RedisStore struct {
	redis     *database.Redis
	threshold int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewRedisStore creates a Redis-backed store. A threshold of zero or less
// disables compression.
func NewRedisStore(redis *database.Redis, threshold int) (*RedisStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &RedisStore{
		redis:     redis,
		threshold: threshold,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

// Get returns the decompressed value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.redis.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, true, nil
	}
	value, err := s.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.redis.Set(ctx, key, s.encode(value), ttl)
}

func (s *RedisStore) encode(value []byte) []byte {
	if s.threshold <= 0 || len(value) < s.threshold {
		return value
	}
	return s.encoder.EncodeAll(value, make([]byte, 0, len(value)/2))
}

// Delete removes exact keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

// DeletePattern removes every key matching pattern.
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) (int, error) {
	return s.redis.DeletePattern(ctx, pattern)
}

// Close releases the codec resources.
func (s *RedisStore) Close() {
	s.decoder.Close()
	_ = s.encoder.Close()
}

var _ Store = (*RedisStore)(nil)
