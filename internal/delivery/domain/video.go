package domain

import (
	"context"
	"time"
)

const (
	// DefaultContentType used when a record carries no content type
	DefaultContentType = "application/octet-stream"
	// ManifestFileName master playlist name inside a video directory
	ManifestFileName = "master.m3u8"
	// SegmentExt extension of media segments
	SegmentExt = ".ts"

	// ManifestContentType HLS playlist mime
	ManifestContentType = "application/vnd.apple.mpegurl"
	// SegmentContentType MPEG transport stream mime
	SegmentContentType = "video/mp2t"
	// HLSCacheControl cache policy of immutable HLS artifacts
	HLSCacheControl = "max-age=3600"
)

// VideoRecord 影片記錄, 只有 FilePath 和 ContentType 會被傳送流程使用
type VideoRecord struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FilePath    string    `gorm:"not null" json:"file_path"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName gorm table name
func (VideoRecord) TableName() string {
	return "video_records"
}

// MediaType content type to send, falls back to DefaultContentType
func (v *VideoRecord) MediaType() string {
	if v.ContentType == "" {
		return DefaultContentType
	}
	return v.ContentType
}

// SegmentRef one artifact inside a video's HLS directory
type SegmentRef struct {
	VideoID string
	Name    string
}

// IsManifest reports whether the ref points at the master playlist
func (s SegmentRef) IsManifest() bool {
	return s.Name == ManifestFileName
}

// MediaStore resolves a video id to its record. Returns ErrNotFound on miss.
type MediaStore interface {
	Lookup(ctx context.Context, id string) (*VideoRecord, error)
}
