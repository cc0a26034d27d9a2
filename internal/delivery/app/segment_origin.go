package app

import (
	"context"
	"fmt"
	"io"
	"path"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/database"
	errprocess "media_delivery_service/pkg/err"

	"github.com/minio/minio-go/v7"
)

// SegmentOrigin 本地沒有的 HLS 檔案改從 MinIO 取得
type SegmentOrigin interface {
	Open(ctx context.Context, ref domain.SegmentRef) (io.ReadCloser, int64, error)
}

type minioSegmentOrigin struct {
	client database.MinIOClientRepo
	prefix string
}

// NewSegmentOrigin objects live under {prefix}/{videoID}/{file}
func NewSegmentOrigin(client database.MinIOClientRepo, prefix string) SegmentOrigin {
	return &minioSegmentOrigin{client: client, prefix: prefix}
}

// ObjectKey manifest 為 {prefix}/{id}/master.m3u8, segment 為 {prefix}/{id}/{name}.ts
func ObjectKey(prefix string, ref domain.SegmentRef) string {
	name := ref.Name
	if !ref.IsManifest() {
		name += domain.SegmentExt
	}
	return path.Join(prefix, ref.VideoID, name)
}

// Open ref 必須已經通過 ValidateComponent
func (o *minioSegmentOrigin) Open(ctx context.Context, ref domain.SegmentRef) (io.ReadCloser, int64, error) {
	key := ObjectKey(o.prefix, ref)

	// GetObject 是 lazy 的, 先 stat 才知道存不存在和大小
	info, err := o.client.StatObject(ctx, key)
	if err != nil {
		if database.IsObjectNotFound(err) {
			return nil, 0, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("objectKey[%s] 不存在", key))
		}
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("objectKey[%s] stat 失敗 : %v", key, err))
	}

	obj, err := o.client.GetObject(ctx, key, minio.GetObjectOptions{})
	if err != nil {
		if database.IsObjectNotFound(err) {
			return nil, 0, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("objectKey[%s] 不存在", key))
		}
		return nil, 0, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("objectKey[%s] 無法取得檔案 : %v", key, err))
	}
	return obj, info.Size, nil
}
