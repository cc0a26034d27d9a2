package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/config"
	errprocess "media_delivery_service/pkg/err"
	"media_delivery_service/pkg/logger"

	"go.uber.org/zap"
)

// DeliveryUseCase 這裡封裝了對外提供的影片傳送服務
type DeliveryUseCase interface {
	FullDownload(ctx context.Context, videoID string) (*domain.MediaResponse, error)
	RangeDownload(ctx context.Context, videoID, rangeHeader string) (*domain.MediaResponse, error)
	Manifest(ctx context.Context, videoID string) (*domain.MediaResponse, error)
	Segment(ctx context.Context, videoID, segment string) (*domain.MediaResponse, error)
}

type deliveryUseCase struct {
	Store        domain.MediaStore
	Streamer     *ChunkStreamer
	Parser       *RangeParser
	SegmentsRoot string
	// MalformedRange config.MalformedRangeReject or config.MalformedRangeIgnore
	MalformedRange string
	// Origin 可為 nil, 表示不啟用 MinIO fallback
	Origin SegmentOrigin
}

// NewDeliveryUseCase 建立一個新的 DeliveryUseCase
func NewDeliveryUseCase(store domain.MediaStore,
	streamer *ChunkStreamer,
	parser *RangeParser,
	segmentsRoot string,
	malformedRange string,
	origin SegmentOrigin,
) DeliveryUseCase {
	return &deliveryUseCase{
		Store:          store,
		Streamer:       streamer,
		Parser:         parser,
		SegmentsRoot:   segmentsRoot,
		MalformedRange: malformedRange,
		Origin:         origin,
	}
}

// FullDownload 整檔下載, 200
func (d *deliveryUseCase) FullDownload(ctx context.Context, videoID string) (*domain.MediaResponse, error) {
	record, err := d.lookup(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return d.full(record)
}

// RangeDownload 沒有 Range header 時等同 FullDownload, 否則回傳一個 chunk, 206
func (d *deliveryUseCase) RangeDownload(ctx context.Context, videoID, rangeHeader string) (*domain.MediaResponse, error) {
	if strings.TrimSpace(rangeHeader) == "" {
		return d.FullDownload(ctx, videoID)
	}

	record, err := d.lookup(ctx, videoID)
	if err != nil {
		return nil, err
	}

	size, err := d.Streamer.Size(record.FilePath)
	if err != nil {
		return nil, err
	}

	rng, _, err := d.Parser.Parse(rangeHeader, size)
	if err != nil {
		if d.MalformedRange == config.MalformedRangeIgnore {
			logger.Log.Warn("malformed range ignored",
				zap.String("videoID", videoID), zap.String("range", rangeHeader))
			return d.full(record)
		}
		return nil, errprocess.Warn(domain.ErrMalformedRange,
			fmt.Sprintf("videoID[%s] range[%q] 無法解析 size[%d]", videoID, rangeHeader, size))
	}

	data, n, err := d.Streamer.ReadRange(record.FilePath, rng)
	if err != nil {
		return nil, err
	}
	// 檔案變短時以實際讀到的長度回報
	served := domain.ByteRange{Start: rng.Start, End: rng.Start + n - 1}

	logger.Log.Debug("range served",
		zap.String("videoID", videoID),
		zap.Int64("start", served.Start),
		zap.Int64("end", served.End),
		zap.Int64("size", size))

	return &domain.MediaResponse{
		Kind:          domain.RangeDownload,
		Status:        http.StatusPartialContent,
		ContentType:   record.MediaType(),
		ContentLength: n,
		Data:          data,
		Headers: map[string]string{
			"Content-Range":          served.ContentRange(size),
			"Content-Length":         strconv.FormatInt(n, 10),
			"Cache-Control":          "no-cache, no-store, must-revalidate",
			"Pragma":                 "no-cache",
			"Expires":                "0",
			"X-Content-Type-Options": "nosniff",
			"Accept-Ranges":          "bytes",
		},
	}, nil
}

// Manifest master.m3u8
func (d *deliveryUseCase) Manifest(ctx context.Context, videoID string) (*domain.MediaResponse, error) {
	path, err := ManifestPath(d.SegmentsRoot, videoID)
	if err != nil {
		return nil, err
	}
	ref := domain.SegmentRef{VideoID: videoID, Name: domain.ManifestFileName}
	return d.hls(ctx, path, ref, domain.ManifestDownload, domain.ManifestContentType)
}

// Segment {segment}.ts
func (d *deliveryUseCase) Segment(ctx context.Context, videoID, segment string) (*domain.MediaResponse, error) {
	path, err := SegmentPath(d.SegmentsRoot, videoID, segment)
	if err != nil {
		return nil, err
	}
	ref := domain.SegmentRef{VideoID: videoID, Name: segment}
	return d.hls(ctx, path, ref, domain.SegmentDownload, domain.SegmentContentType)
}

func (d *deliveryUseCase) lookup(ctx context.Context, videoID string) (*domain.VideoRecord, error) {
	if err := ValidateComponent(videoID); err != nil {
		return nil, errprocess.Warn(err, fmt.Sprintf("videoID[%q] 非法識別碼", videoID))
	}

	record, err := d.Store.Lookup(ctx, videoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, errprocess.Wrap(domain.ErrIOFailure, fmt.Sprintf("videoID[%s] 查詢影片記錄失敗 : %v", videoID, err))
	}
	return record, nil
}

func (d *deliveryUseCase) full(record *domain.VideoRecord) (*domain.MediaResponse, error) {
	body, size, err := d.Streamer.Open(record.FilePath)
	if err != nil {
		return nil, err
	}

	return &domain.MediaResponse{
		Kind:          domain.FullDownload,
		Status:        http.StatusOK,
		ContentType:   record.MediaType(),
		ContentLength: size,
		Body:          body,
		Headers: map[string]string{
			"Content-Length": strconv.FormatInt(size, 10),
			"Accept-Ranges":  "bytes",
		},
	}, nil
}

func (d *deliveryUseCase) hls(ctx context.Context, path string, ref domain.SegmentRef,
	kind domain.ResourceKind, contentType string,
) (*domain.MediaResponse, error) {
	body, size, err := d.Streamer.Open(path)
	if err != nil && errors.Is(err, domain.ErrNotFound) && d.Origin != nil {
		body, size, err = d.Origin.Open(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	return &domain.MediaResponse{
		Kind:          kind,
		Status:        http.StatusOK,
		ContentType:   contentType,
		ContentLength: size,
		Body:          body,
		Headers: map[string]string{
			"Content-Length": strconv.FormatInt(size, 10),
			"Cache-Control":  domain.HLSCacheControl,
		},
	}, nil
}
