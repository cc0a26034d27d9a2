package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"media_delivery_service/internal/delivery/api/handlers"
	"media_delivery_service/internal/delivery/api/router"
	"media_delivery_service/internal/delivery/app"
	"media_delivery_service/internal/delivery/domain"
	"media_delivery_service/internal/delivery/repository"
	"media_delivery_service/pkg/config"
	"media_delivery_service/pkg/database"
	"media_delivery_service/pkg/logger"
	testtool "media_delivery_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.Delivery, config.EnvConfig.DeliveryLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Delivery](config.EnvConfig.Delivery, config.EnvConfig.DeliveryYAMLPath)
	if config.EnvConfig.DeliveryPort != "" {
		cfg.Port = config.EnvConfig.DeliveryPort
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("invalid config", zap.Error(err))
	}

	fs := afero.NewOsFs()

	// 1. 影片記錄來源: PostgreSQL, 沒設定時用記憶體
	var (
		store   domain.MediaStore
		catalog handlers.Catalog
	)
	if cfg.PostgreSQL.Enabled() {
		db, err := database.NewPGConnection(database.Connection{
			ConnectStr: database.PGDSN(cfg.PostgreSQL.Host, cfg.PostgreSQL.Port,
				cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database),
			RetryCount:    cfg.PostgreSQL.RetryCount,
			RetryInterval: secondsOf(cfg.PostgreSQL.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
				zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
		}

		videoRepo := repository.NewVideoRepo(db, fs)
		if err := videoRepo.AutoMigrate(); err != nil {
			logger.Log.Fatal("資料表遷移失敗", zap.Error(err))
		}
		store, catalog = videoRepo, videoRepo
	} else {
		logger.Log.Warn("pg not configured, using in-memory video records", zap.Int("records", len(cfg.Records)))
		mem := repository.NewMemoryStore()
		for _, seed := range cfg.Records {
			mem.Add(domain.VideoRecord{
				ID:          seed.ID,
				Title:       seed.Title,
				FilePath:    seed.FilePath,
				ContentType: seed.ContentType,
			})
		}
		store, catalog = mem, mem
	}

	// 2. Redis 記錄快取
	if cfg.Redis.Enabled() {
		rdb, err := database.NewRedisClient(database.RedisConnection{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.RedisDB,

			MasterName:    cfg.Redis.MasterName,
			SentinelAddrs: cfg.Redis.SentinelAddrs,
		})
		if err != nil {
			logger.Log.Fatal("Unable to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		store = repository.NewCachedMediaStore(store,
			database.NewRedisRepository[domain.VideoRecord](rdb), cfg.RecordCacheTTL)
	}

	// 3. MinIO fallback
	var origin app.SegmentOrigin
	if cfg.MinIO.Enabled() {
		minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
			Endpoint:   fmt.Sprintf("%s:%d", cfg.MinIO.Host, cfg.MinIO.Port),
			User:       cfg.MinIO.User,
			Password:   cfg.MinIO.Password,
			BucketName: cfg.MinIO.BucketName,
			UseSSL:     cfg.MinIO.UseSSL,

			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: cfg.MinIO.RetryInterval,
		})
		if err != nil {
			logger.Log.Fatal("Unable to connect to minio after retries",
				zap.String("host", cfg.MinIO.Host), zap.Error(err))
		}
		origin = app.NewSegmentOrigin(minioClient, cfg.OriginPrefix)
	}

	usecase := app.NewDeliveryUseCase(store,
		app.NewChunkStreamer(fs),
		app.NewRangeParser(cfg.ChunkSize, cfg.HonorRangeEnd),
		cfg.SegmentsRoot,
		cfg.MalformedRange,
		origin,
	)

	// 4. Fiber
	r := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: config.IsProduction(),
		EnablePrintRoutes:     config.IsLocal(),
	})
	accessLog := &lumberjack.Logger{
		Filename:   filepath.Join(config.EnvConfig.DeliveryLogPath, "access.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
	defer accessLog.Close()

	r.Use(recover.New())
	r.Use(fiber_log.New(fiber_log.Config{
		Output: accessLog,
		Format: "${time} ${status} ${method} ${path} ${reqHeader:Range} ${bytesSent} ${latency}\n",
	}))
	router.RegisterRoutes(r, &handlers.MediaHandler{Usecase: usecase, Catalog: catalog})

	testtool.StartPprof()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down delivery service")
		if err := r.Shutdown(); err != nil {
			logger.Log.Error("shutdown failed", zap.Error(err))
		}
	}()

	addr := cfg.IP + ":" + cfg.Port
	logger.Log.Info("delivery service listening",
		zap.String("addr", addr),
		zap.Int64("chunk_size", cfg.ChunkSize),
		zap.String("segments_root", cfg.SegmentsRoot),
		zap.String("malformed_range", cfg.MalformedRange))
	if err := r.Listen(addr); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

// pg.retry_interval 以秒為單位
func secondsOf(n int) time.Duration {
	return time.Duration(n) * time.Second
}
