package app

import (
	"context"
	"io"

	"media_delivery_service/internal/delivery/domain"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// MockMinIOClient 是 MinIOClientRepo 的 Mock
type MockMinIOClient struct {
	mock.Mock
}

// StatObject 模擬 MinIO stat
func (m *MockMinIOClient) StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error) {
	args := m.Called(ctx, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

// GetObject 模擬 MinIO 取得object
func (m *MockMinIOClient) GetObject(ctx context.Context, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockMediaStore 是 MediaStore 的 Mock
type MockMediaStore struct {
	mock.Mock
}

// Lookup 模擬查詢影片記錄
func (m *MockMediaStore) Lookup(ctx context.Context, id string) (*domain.VideoRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VideoRecord), args.Error(1)
}

// MockSegmentOrigin 是 SegmentOrigin 的 Mock
type MockSegmentOrigin struct {
	mock.Mock
}

// Open 模擬從 origin 取得 HLS 檔案
func (m *MockSegmentOrigin) Open(ctx context.Context, ref domain.SegmentRef) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.Error(2)
}
