package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/database"
	"media_delivery_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// MockRedisRepository 是 RedisRepository[domain.VideoRecord] 的 Mock
type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value domain.VideoRecord, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (domain.VideoRecord, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.VideoRecord), args.Error(1)
}

func (m *MockRedisRepository) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepository) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockRedisRepository) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

// countingStore 記錄下層被查詢的次數
type countingStore struct {
	*MemoryStore
	calls int
}

func (c *countingStore) Lookup(ctx context.Context, id string) (*domain.VideoRecord, error) {
	c.calls++
	return c.MemoryStore.Lookup(ctx, id)
}

func TestMemoryStore(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	s := NewMemoryStore(
		domain.VideoRecord{ID: "b", Title: "cats", FilePath: "/v/b.mp4"},
		domain.VideoRecord{ID: "a", Title: "dogs", FilePath: "/v/a.mp4"},
	)
	s.Add(domain.VideoRecord{ID: "c", Title: "cats", FilePath: "/v/c.mp4"})

	r, err := s.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "/v/a.mp4", r.FilePath)

	_, err = s.Lookup(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	cats, err := s.GetByTitle("cats")
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	none, err := s.GetByTitle("birds")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCachedMediaStore(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	record := domain.VideoRecord{ID: "abc", FilePath: "/v/abc.mp4", ContentType: "video/mp4"}

	t.Run("cache hit", func(t *testing.T) {
		cache := new(MockRedisRepository)
		next := &countingStore{MemoryStore: NewMemoryStore()}
		cache.On("Get", ctx, "video_record:abc").Return(record, nil)

		got, err := NewCachedMediaStore(next, cache, time.Minute).Lookup(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "/v/abc.mp4", got.FilePath)
		assert.Equal(t, 0, next.calls)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss fills cache", func(t *testing.T) {
		cache := new(MockRedisRepository)
		next := &countingStore{MemoryStore: NewMemoryStore(record)}
		cache.On("Get", ctx, "video_record:abc").Return(domain.VideoRecord{}, database.ErrCacheMiss)
		cache.On("Set", ctx, "video_record:abc", record, time.Minute).Return(nil)

		got, err := NewCachedMediaStore(next, cache, time.Minute).Lookup(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, record, *got)
		assert.Equal(t, 1, next.calls)
		cache.AssertExpectations(t)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		cache := new(MockRedisRepository)
		next := &countingStore{MemoryStore: NewMemoryStore()}
		cache.On("Get", ctx, "video_record:abc").Return(domain.VideoRecord{}, database.ErrCacheMiss)

		_, err := NewCachedMediaStore(next, cache, time.Minute).Lookup(ctx, "abc")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("redis down falls through", func(t *testing.T) {
		cache := new(MockRedisRepository)
		next := &countingStore{MemoryStore: NewMemoryStore(record)}
		cache.On("Get", ctx, mock.Anything).Return(domain.VideoRecord{}, errors.New("dial tcp: connection refused"))
		cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("dial tcp: connection refused"))

		got, err := NewCachedMediaStore(next, cache, time.Minute).Lookup(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "/v/abc.mp4", got.FilePath)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("invalidate", func(t *testing.T) {
		cache := new(MockRedisRepository)
		cache.On("Del", ctx, "video_record:abc").Return(nil)

		require.NoError(t, NewCachedMediaStore(NewMemoryStore(), cache, time.Minute).Invalidate(ctx, "abc"))
		cache.AssertExpectations(t)
	})
}

func TestVideoRepoPrepare(t *testing.T) {
	logger.SetNewNop()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/v/poster.bin", pngHeader, 0644))
	repo := NewVideoRepo(nil, fs).(*videoRepo)

	t.Run("產生 ID 並判斷 content type", func(t *testing.T) {
		v := &domain.VideoRecord{FilePath: "/v/poster.bin"}
		require.NoError(t, repo.prepare(v))

		_, err := uuid.Parse(v.ID)
		assert.NoError(t, err)
		assert.Equal(t, "image/png", v.ContentType)
	})

	t.Run("保留呼叫端的值", func(t *testing.T) {
		v := &domain.VideoRecord{ID: "fixed", FilePath: "/v/poster.bin", ContentType: "video/mp4"}
		require.NoError(t, repo.prepare(v))
		assert.Equal(t, "fixed", v.ID)
		assert.Equal(t, "video/mp4", v.ContentType)
	})

	t.Run("檔案不存在時不判斷", func(t *testing.T) {
		v := &domain.VideoRecord{FilePath: "/v/missing.mp4"}
		require.NoError(t, repo.prepare(v))
		assert.NotEmpty(t, v.ID)
		assert.Empty(t, v.ContentType)
	})

	t.Run("缺少 file path", func(t *testing.T) {
		assert.Error(t, repo.prepare(&domain.VideoRecord{}))
	})
}
