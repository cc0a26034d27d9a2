package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"media_delivery_service/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClientRepo read side of the object store used by the delivery service
type MinIOClientRepo interface {
	StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// MinIOClient definition minio client
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient

	err := withRetry("minio", d.RetryCount, d.RetryInterval, func() error {
		c, err := NewMinioClient(d.Endpoint, d.User, d.Password, d.BucketName, d.UseSSL)
		if err != nil {
			return err
		}
		mc = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("minio connected", zap.String("endpoint", d.Endpoint), zap.String("bucket", d.BucketName))
	return mc, nil
}

// NewMinioClient create a new minio client, the bucket must already exist
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	exists, err := minioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket [%s]: %w", bucketName, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket [%s] does not exist", bucketName)
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: bucketName,
	}, nil
}

// StatObject object metadata, used to learn the size before streaming
func (m *MinIOClient) StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error) {
	return m.Client.StatObject(ctx, m.BucketName, objectName, minio.StatObjectOptions{})
}

// GetObject open object for reading, caller closes it
func (m *MinIOClient) GetObject(ctx context.Context, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return m.Client.GetObject(ctx, m.BucketName, objectName, opts)
}

// IsObjectNotFound reports whether err means the key or bucket does not exist
func IsObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
