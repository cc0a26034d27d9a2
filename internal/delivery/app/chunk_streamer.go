package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"

	"media_delivery_service/internal/delivery/domain"
	errprocess "media_delivery_service/pkg/err"

	"github.com/spf13/afero"
)

// ChunkStreamer 讀取本地影片檔, 整檔或單一區段
type ChunkStreamer struct {
	fs afero.Fs
}

// NewChunkStreamer fs 通常是 afero.NewOsFs(), 測試用 MemMapFs
func NewChunkStreamer(fs afero.Fs) *ChunkStreamer {
	return &ChunkStreamer{fs: fs}
}

// Size 檔案長度
func (s *ChunkStreamer) Size(path string) (int64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, classify(err, fmt.Sprintf("path[%s] stat 失敗", path))
	}
	if info.IsDir() {
		return 0, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("path[%s] 是目錄", path))
	}
	return info.Size(), nil
}

// Open returns the open file and its length. The caller owns the handle.
func (s *ChunkStreamer) Open(path string) (io.ReadCloser, int64, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, 0, classify(err, fmt.Sprintf("path[%s] 開啟檔案失敗", path))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] stat 失敗 : %v", path, err))
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("path[%s] 是目錄", path))
	}
	return f, info.Size(), nil
}

// ReadRange reads at most rng.Length() bytes starting at rng.Start.
// A short read near EOF returns what was read; reading nothing is an I/O failure.
func (s *ChunkStreamer) ReadRange(path string, rng domain.ByteRange) ([]byte, int64, error) {
	if rng.Start < 0 || rng.End < rng.Start {
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] 非法區段 %d-%d", path, rng.Start, rng.End))
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, 0, classify(err, fmt.Sprintf("path[%s] 開啟檔案失敗", path))
	}
	defer f.Close()

	offset, err := f.Seek(rng.Start, io.SeekStart)
	if err != nil {
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] seek %d 失敗 : %v", path, rng.Start, err))
	}
	if offset != rng.Start {
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] seek 位置 %d 不等於 %d", path, offset, rng.Start))
	}

	buf := make([]byte, rng.Length())
	n, err := io.ReadFull(f, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.ErrUnexpectedEOF):
		// 檔案在 stat 之後被截斷
	case errors.Is(err, io.EOF):
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] offset %d 讀不到資料", path, rng.Start))
	default:
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] 讀取失敗 : %v", path, err))
	}
	if n == 0 {
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("path[%s] offset %d 讀不到資料", path, rng.Start))
	}

	return buf[:n], int64(n), nil
}

// 路徑中間某層是一般檔案 (ENOTDIR) 也算不存在
func classify(err error, msg string) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return errprocess.Warn(domain.ErrNotFound, msg)
	}
	return errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("%s : %v", msg, err))
}
