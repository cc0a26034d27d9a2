package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/internal/delivery/repository"
	"media_delivery_service/pkg/config"
	"media_delivery_service/pkg/database"
	"media_delivery_service/pkg/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// register_video 把已經在磁碟上的影片寫進 video_records
//
//	register_video -title "Intro" [-desc ...] [-id ...] [-type video/mp4] <file>
func main() {
	title := flag.String("title", "", "video title")
	desc := flag.String("desc", "", "video description")
	id := flag.String("id", "", "video id, generated when empty")
	contentType := flag.String("type", "", "content type, sniffed from the file when empty")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: register_video -title <title> [-desc d] [-id id] [-type mime] <file>")
		os.Exit(1)
	}

	logger.Log = logger.Initialize(config.EnvConfig.Delivery, config.EnvConfig.DeliveryLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Delivery](config.EnvConfig.Delivery, config.EnvConfig.DeliveryYAMLPath)
	if !cfg.PostgreSQL.Enabled() {
		logger.Log.Fatal("pg is not configured, nothing to register into")
	}

	path, err := filepath.Abs(flag.Arg(0))
	if err != nil {
		logger.Log.Fatal("resolve path failed", zap.Error(err))
	}
	fs := afero.NewOsFs()
	if info, err := fs.Stat(path); err != nil || info.IsDir() {
		logger.Log.Fatal("video file not readable", zap.String("path", path), zap.Error(err))
	}

	db, err := database.NewPGConnection(database.Connection{
		ConnectStr: database.PGDSN(cfg.PostgreSQL.Host, cfg.PostgreSQL.Port,
			cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
	}

	videoRepo := repository.NewVideoRepo(db, fs)
	if err := videoRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("資料表遷移失敗", zap.Error(err))
	}

	video := &domain.VideoRecord{
		ID:          *id,
		Title:       *title,
		Description: *desc,
		FilePath:    path,
		ContentType: *contentType,
	}
	if err := videoRepo.Create(video); err != nil {
		logger.Log.Fatal("建立影片記錄失敗", zap.Error(err))
	}

	// 重複使用的 id 要把舊的快取清掉
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedisClient(database.RedisConnection{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.RedisDB,

			MasterName:    cfg.Redis.MasterName,
			SentinelAddrs: cfg.Redis.SentinelAddrs,
		})
		if err != nil {
			logger.Log.Warn("redis unavailable, cached record not invalidated", zap.Error(err))
		} else {
			defer rdb.Close()
			cached := repository.NewCachedMediaStore(videoRepo,
				database.NewRedisRepository[domain.VideoRecord](rdb), cfg.RecordCacheTTL)
			if err := cached.Invalidate(context.Background(), video.ID); err != nil {
				logger.Log.Warn("invalidate cached record failed", zap.String("videoID", video.ID), zap.Error(err))
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(video); err != nil {
		logger.Log.Fatal("encode result failed", zap.Error(err))
	}
}
