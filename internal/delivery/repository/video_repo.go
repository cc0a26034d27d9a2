package repository

import (
	"context"
	"errors"
	"fmt"

	"media_delivery_service/internal/delivery/domain"
	errprocess "media_delivery_service/pkg/err"
	"media_delivery_service/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoRepo definition get video record
type VideoRepo interface {
	domain.MediaStore
	AutoMigrate() error
	Create(video *domain.VideoRecord) error
	GetByID(id string) (*domain.VideoRecord, error)
	List() ([]domain.VideoRecord, error)
	GetByTitle(title string) ([]domain.VideoRecord, error)
}

type videoRepo struct {
	db *gorm.DB
	// fs 用來讀檔頭判斷 content type
	fs afero.Fs
}

// NewVideoRepo create VideoRepo
func NewVideoRepo(db *gorm.DB, fs afero.Fs) VideoRepo {
	return &videoRepo{db: db, fs: fs}
}

// AutoMigrate 建立或更新 video_records 表
func (r *videoRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.VideoRecord{})
}

// Create 寫入影片記錄, ID 空白時產生 UUID, ContentType 空白時讀檔判斷
func (r *videoRepo) Create(video *domain.VideoRecord) error {
	if err := r.prepare(video); err != nil {
		return err
	}
	return r.db.Create(video).Error
}

// GetByID get video record by id
func (r *videoRepo) GetByID(id string) (*domain.VideoRecord, error) {
	return r.first(r.db, id)
}

// Lookup MediaStore 實作
func (r *videoRepo) Lookup(ctx context.Context, id string) (*domain.VideoRecord, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// List 依建立時間排序
func (r *videoRepo) List() ([]domain.VideoRecord, error) {
	var videos []domain.VideoRecord
	if err := r.db.Order("created_at ASC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// GetByTitle 標題完全相符
func (r *videoRepo) GetByTitle(title string) ([]domain.VideoRecord, error) {
	var videos []domain.VideoRecord
	if err := r.db.Where("title = ?", title).Order("created_at ASC").Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) first(db *gorm.DB, id string) (*domain.VideoRecord, error) {
	var v domain.VideoRecord
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errprocess.Warn(domain.ErrNotFound, fmt.Sprintf("videoID[%s] 找不到影片", id))
		}
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) prepare(video *domain.VideoRecord) error {
	if video.FilePath == "" {
		return errprocess.Set("影片記錄缺少 file path")
	}
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.ContentType == "" && r.fs != nil {
		ct, err := SniffContentType(r.fs, video.FilePath)
		if err != nil {
			logger.Log.Warn("content type sniff failed", zap.String("path", video.FilePath), zap.Error(err))
		} else {
			video.ContentType = ct
		}
	}
	return nil
}

// SniffContentType 讀檔頭判斷 mime type
func SniffContentType(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
