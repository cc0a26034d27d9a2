package domain

import (
	"fmt"
	"io"
)

// ResourceKind request kinds served by the delivery engine
type ResourceKind string

const (
	// FullDownload whole file, 200
	FullDownload ResourceKind = "full"
	// RangeDownload one byte window, 206
	RangeDownload ResourceKind = "range"
	// ManifestDownload master playlist
	ManifestDownload ResourceKind = "manifest"
	// SegmentDownload one ts segment
	SegmentDownload ResourceKind = "segment"
)

// ByteRange inclusive window [Start, End] of a file
type ByteRange struct {
	Start int64
	End   int64
}

// Length number of bytes covered by the window
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange value of the Content-Range header for a file of size total
func (r ByteRange) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// MediaResponse transport agnostic result of a delivery request.
// Exactly one of Body and Data is set.
type MediaResponse struct {
	Kind          ResourceKind
	Status        int
	ContentType   string
	Headers       map[string]string
	ContentLength int64

	// Body streamed to the client and closed once written
	Body io.ReadCloser
	// Data already buffered window of a range response
	Data []byte
}

// Close releases Body if present
func (m *MediaResponse) Close() error {
	if m == nil || m.Body == nil {
		return nil
	}
	return m.Body.Close()
}
