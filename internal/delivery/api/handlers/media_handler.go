package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"media_delivery_service/internal/delivery/app"
	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// 回給 client 的固定訊息, 不帶路徑或內部錯誤
const (
	msgInvalidIdentifier = "invalid video identifier"
	msgNotFound          = "video not found"
	msgMalformedRange    = "invalid range header"
	msgInternal          = "internal server error"
)

// Catalog 影片清單查詢
type Catalog interface {
	List() ([]domain.VideoRecord, error)
	GetByTitle(title string) ([]domain.VideoRecord, error)
}

// MediaHandler definition media delivery handler
type MediaHandler struct {
	Usecase app.DeliveryUseCase
	Catalog Catalog
}

// GetVideo 整檔或 Range 下載
func (h *MediaHandler) GetVideo(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.Usecase.RangeDownload(c.UserContext(), id, c.Get(fiber.HeaderRange))
	if err != nil {
		return writeError(c, err)
	}
	return writeMedia(c, res)
}

// GetVideoFile master.m3u8 或 {segment}.ts, 其他檔名一律 404
func (h *MediaHandler) GetVideoFile(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	file, err := param(c, "file")
	if err != nil {
		return writeError(c, err)
	}

	var res *domain.MediaResponse
	switch {
	case file == domain.ManifestFileName:
		res, err = h.Usecase.Manifest(c.UserContext(), id)
	case strings.HasSuffix(file, domain.SegmentExt):
		res, err = h.Usecase.Segment(c.UserContext(), id, strings.TrimSuffix(file, domain.SegmentExt))
	default:
		return writeError(c, domain.ErrNotFound)
	}
	if err != nil {
		return writeError(c, err)
	}
	return writeMedia(c, res)
}

// UnmatchedVideoPath /videos 底下沒有對應路由的路徑.
// 未編碼的 "/videos/../etc/passwd" 會落到這裡, 含 ".." 的一律 400, 其餘 404
func (h *MediaHandler) UnmatchedVideoPath(c *fiber.Ctx) error {
	rest, err := param(c, "*")
	if err != nil {
		return writeError(c, err)
	}
	for _, seg := range strings.Split(rest, "/") {
		if seg == ".." {
			return writeError(c, domain.ErrInvalidIdentifier)
		}
	}
	return writeError(c, domain.ErrNotFound)
}

// ListVideos 影片清單, ?title= 只回傳標題相符的
func (h *MediaHandler) ListVideos(c *fiber.Ctx) error {
	var (
		videos []domain.VideoRecord
		err    error
	)
	if title := c.Query("title"); title != "" {
		videos, err = h.Catalog.GetByTitle(title)
	} else {
		videos, err = h.Catalog.List()
	}
	if err != nil {
		logger.Log.Error("list videos failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
	}

	out := make([]fiber.Map, len(videos))
	for i, v := range videos {
		out[i] = fiber.Map{
			"id":           v.ID,
			"title":        v.Title,
			"description":  v.Description,
			"content_type": v.MediaType(),
			"created_at":   v.CreatedAt,
		}
	}
	return c.JSON(out)
}

// fiber 不會解碼路徑參數, %2F 之類要在這裡還原後再檢查
func param(c *fiber.Ctx, key string) (string, error) {
	v, err := url.PathUnescape(c.Params(key))
	if err != nil {
		return "", domain.ErrInvalidIdentifier
	}
	return v, nil
}

func writeMedia(c *fiber.Ctx, res *domain.MediaResponse) error {
	c.Status(res.Status)
	c.Set(fiber.HeaderContentType, res.ContentType)
	for k, v := range res.Headers {
		// fasthttp 依 body 自行設定
		if k == fiber.HeaderContentLength {
			continue
		}
		c.Set(k, v)
	}

	if res.Body != nil {
		// fasthttp 寫完或連線中斷時會 Close
		c.Response().SetBodyStream(res.Body, int(res.ContentLength))
		return nil
	}
	return c.Send(res.Data)
}

func writeError(c *fiber.Ctx, err error) error {
	status, msg := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("delivery failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// StatusOf maps a delivery error to its HTTP status and client message
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, msgInvalidIdentifier
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, domain.ErrMalformedRange):
		return http.StatusBadRequest, msgMalformedRange
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// ErrorHandler fiber 全域錯誤處理, 未知錯誤與 panic 都回 500
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	logger.Log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
}
