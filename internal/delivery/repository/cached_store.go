package repository

import (
	"context"
	"errors"
	"time"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/database"
	"media_delivery_service/pkg/logger"

	"go.uber.org/zap"
)

const recordKeyPrefix = "video_record:"

// CachedMediaStore 先查 redis, miss 再查下層 store 並回寫.
// redis 故障時直接穿透, 不影響傳送.
type CachedMediaStore struct {
	next  domain.MediaStore
	cache database.RedisRepository[domain.VideoRecord]
	ttl   time.Duration
}

// NewCachedMediaStore wraps next with a redis read-through cache
func NewCachedMediaStore(next domain.MediaStore, cache database.RedisRepository[domain.VideoRecord], ttl time.Duration) *CachedMediaStore {
	return &CachedMediaStore{next: next, cache: cache, ttl: ttl}
}

// RecordKey redis key of a video record
func RecordKey(id string) string {
	return recordKeyPrefix + id
}

// Lookup NotFound 不會被快取
func (s *CachedMediaStore) Lookup(ctx context.Context, id string) (*domain.VideoRecord, error) {
	key := RecordKey(id)

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		logger.Log.Warn("record cache get failed", zap.String("key", key), zap.Error(err))
	}

	record, err := s.next.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, *record, s.ttl); err != nil {
		logger.Log.Warn("record cache set failed", zap.String("key", key), zap.Error(err))
	}
	return record, nil
}

// Invalidate drop the cached record of id
func (s *CachedMediaStore) Invalidate(ctx context.Context, id string) error {
	return s.cache.Del(ctx, RecordKey(id))
}
