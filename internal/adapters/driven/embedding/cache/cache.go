// Package cache provides a Redis-backed decorator that caches query embeddings.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const keyPrefix = "ragdocs:emb:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// EmbeddingService caches Embed results in Redis. EmbedBatch is passed
// through since ingestion embeds each passage once.
// Cache failures fall back to the provider and are logged.
type EmbeddingService struct {
	next  driven.EmbeddingService
	store Store
	ttl   time.Duration
}

// NewClient connects to Redis using cache settings.
func NewClient(s domain.CacheSettings) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	})
}

// NewEmbeddingService wraps next with a cache. A non-positive ttl uses domain.DefaultCacheTTL.
func NewEmbeddingService(next driven.EmbeddingService, store Store, ttl time.Duration) *EmbeddingService {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &EmbeddingService{next: next, store: store, ttl: ttl}
}

// Key returns the cache key for text under model. A NUL separates the two
// so that no model and text pair collides with another split of the same bytes.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector when present, otherwise calls the provider and stores the result.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(s.next.ModelName(), text)

	data, err := s.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if v, ok := decode(data); ok {
			logger.Debug("embedding cache hit: %s", key[len(keyPrefix):len(keyPrefix)+12])
			return v, nil
		}
		logger.Warn("embedding cache: discarding malformed entry %s", key)
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("embedding cache read failed: %v", err)
	}

	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, key, encode(v), s.ttl).Err(); err != nil {
		logger.Warn("embedding cache write failed: %v", err)
	}
	return v, nil
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.next.EmbedBatch(ctx, texts)
}

func (s *EmbeddingService) Dimensions() int   { return s.next.Dimensions() }
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping checks the provider. An unreachable cache is only logged.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx).Err(); err != nil {
		logger.Warn("embedding cache unreachable: %v", err)
	}
	return s.next.Ping(ctx)
}

// Close closes the cache connection and the provider.
func (s *EmbeddingService) Close() error {
	return errors.Join(s.store.Close(), s.next.Close())
}

// encode stores vectors as little-endian float32.
func encode(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) ([]float32, bool) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, true
}
