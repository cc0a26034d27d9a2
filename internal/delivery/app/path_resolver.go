package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"media_delivery_service/internal/delivery/domain"
	errprocess "media_delivery_service/pkg/err"
)

// ValidateComponent rejects anything that could escape the directory it is joined into
func ValidateComponent(name string) error {
	switch {
	case name == "", name == ".":
		return domain.ErrInvalidIdentifier
	case strings.Contains(name, ".."):
		return domain.ErrInvalidIdentifier
	case strings.ContainsAny(name, "/\\\x00"):
		return domain.ErrInvalidIdentifier
	}
	return nil
}

// Resolve maps id and an optional segment name to a path under baseDir:
// {baseDir}/{id} without a segment, {baseDir}/{id}/{segment}.ts with one.
// The filesystem is not touched.
func Resolve(baseDir, id, segment string) (string, error) {
	if segment == "" {
		return join(baseDir, id, "")
	}
	if err := ValidateComponent(segment); err != nil {
		return "", errprocess.Warn(err, fmt.Sprintf("videoID_segment[%q_%q] 非法分段名稱", id, segment))
	}
	return join(baseDir, id, segment+domain.SegmentExt)
}

// ManifestPath {baseDir}/{id}/master.m3u8
func ManifestPath(baseDir, id string) (string, error) {
	return join(baseDir, id, domain.ManifestFileName)
}

// SegmentPath {baseDir}/{id}/{segment}.ts, segment is required
func SegmentPath(baseDir, id, segment string) (string, error) {
	if segment == "" {
		return "", errprocess.Warn(domain.ErrInvalidIdentifier, fmt.Sprintf("videoID[%q] 缺少分段名稱", id))
	}
	return Resolve(baseDir, id, segment)
}

func join(baseDir, id, file string) (string, error) {
	if err := ValidateComponent(id); err != nil {
		return "", errprocess.Warn(err, fmt.Sprintf("videoID[%q] 非法識別碼", id))
	}

	path := filepath.Join(baseDir, id)
	if file != "" {
		path = filepath.Join(path, file)
	}
	if !within(baseDir, path) {
		return "", errprocess.Warn(domain.ErrInvalidIdentifier, fmt.Sprintf("videoID[%q] path escapes base dir", id))
	}
	return path, nil
}

func within(baseDir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(baseDir), path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
