package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o644))
	return dir
}

func TestReadConfig(t *testing.T) {
	t.Run("explicit values and env expansion", func(t *testing.T) {
		t.Setenv("TEST_SEGMENTS_ROOT", "/srv/hls")
		dir := writeYAML(t, "delivery_test", `
port: "9090"
chunk_size: 300
segments_root: ${TEST_SEGMENTS_ROOT}
malformed_range: ignore
honor_range_end: true
record_cache_ttl: 30s
pg:
  host: db
  port: 5432
minio:
  host: minio
  bucket: videos
records:
  - id: intro
    title: Intro
    file_path: /srv/videos/intro.mp4
    content_type: video/mp4
`)
		cfg, err := ReadConfig[Delivery]("delivery_test", dir)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, int64(300), cfg.ChunkSize)
		assert.Equal(t, "/srv/hls", cfg.SegmentsRoot)
		assert.Equal(t, MalformedRangeIgnore, cfg.MalformedRange)
		assert.True(t, cfg.HonorRangeEnd)
		assert.Equal(t, 30*time.Second, cfg.RecordCacheTTL)
		assert.True(t, cfg.PostgreSQL.Enabled())
		assert.True(t, cfg.MinIO.Enabled())
		assert.False(t, cfg.Redis.Enabled())
		require.Len(t, cfg.Records, 1)
		assert.Equal(t, "/srv/videos/intro.mp4", cfg.Records[0].FilePath)
		assert.Equal(t, "video/mp4", cfg.Records[0].ContentType)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("defaults", func(t *testing.T) {
		dir := writeYAML(t, "delivery_default", "ip: 127.0.0.1\n")
		cfg, err := ReadConfig[Delivery]("delivery_default", dir)
		require.NoError(t, err)

		assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, MalformedRangeReject, cfg.MalformedRange)
		assert.Equal(t, "processed", cfg.OriginPrefix)
		assert.Equal(t, 10*time.Minute, cfg.RecordCacheTTL)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("redis sentinel", func(t *testing.T) {
		dir := writeYAML(t, "delivery_sentinel", `
redis:
  master_name: mymaster
  sentinel_addrs:
    - sentinel-1:26379
    - sentinel-2:26379
`)
		cfg, err := ReadConfig[Delivery]("delivery_sentinel", dir)
		require.NoError(t, err)

		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t, "mymaster", cfg.Redis.MasterName)
		assert.Equal(t, []string{"sentinel-1:26379", "sentinel-2:26379"}, cfg.Redis.SentinelAddrs)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadConfig[Delivery]("nope", t.TempDir())
		assert.Error(t, err)
	})
}

func TestDeliveryValidate(t *testing.T) {
	base := Delivery{ChunkSize: 10, SegmentsRoot: "/hls", MalformedRange: MalformedRangeReject}

	bad := base
	bad.ChunkSize = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.SegmentsRoot = ""
	assert.Error(t, bad.Validate())

	bad = base
	bad.MalformedRange = "drop"
	assert.Error(t, bad.Validate())
}
