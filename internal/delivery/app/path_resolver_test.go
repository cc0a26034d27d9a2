package app

import (
	"path/filepath"
	"testing"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	logger.SetNewNop()
	base := filepath.FromSlash("/srv/hls")

	t.Run("video directory", func(t *testing.T) {
		path, err := Resolve(base, "abc-123", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "abc-123"), path)
	})

	t.Run("manifest", func(t *testing.T) {
		path, err := ManifestPath(base, "abc-123")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "abc-123", "master.m3u8"), path)
	})

	t.Run("segment gets ts extension", func(t *testing.T) {
		path, err := SegmentPath(base, "abc-123", "segment_004")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "abc-123", "segment_004.ts"), path)
	})

	t.Run("segment named like the manifest stays a segment", func(t *testing.T) {
		path, err := SegmentPath(base, "abc-123", "master.m3u8")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "abc-123", "master.m3u8.ts"), path)
	})

	t.Run("missing segment name", func(t *testing.T) {
		_, err := SegmentPath(base, "abc-123", "")
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	})
}

func TestResolveRejectsTraversal(t *testing.T) {
	logger.SetNewNop()
	base := "/srv/hls"

	badIDs := []string{
		"",
		".",
		"..",
		"../etc/passwd",
		"..\\windows",
		"a/../../b",
		"abc/def",
		"abc\\def",
		"abc\x00def",
		"a..b",
	}
	for _, id := range badIDs {
		_, err := ManifestPath(base, id)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier, "id %q", id)

		_, err = Resolve(base, id, "")
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier, "id %q", id)
	}

	badSegments := []string{"..", "../master", "seg/1", "seg\\1", ".", "seg\x00"}
	for _, seg := range badSegments {
		_, err := SegmentPath(base, "abc", seg)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier, "segment %q", seg)
	}
}

func TestValidateComponent(t *testing.T) {
	assert.NoError(t, ValidateComponent("3f2b6c1e-8a4d-4d6b-9c59-0d8a1f2e3b4c"))
	assert.NoError(t, ValidateComponent("segment_0.part"))
	assert.ErrorIs(t, ValidateComponent("../x"), domain.ErrInvalidIdentifier)
}
