package database

import (
	"fmt"

	"media_delivery_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// NewPGConnection create a new postgreSQL gorm connection have retry
func NewPGConnection(d Connection) (*gorm.DB, error) {
	var db *gorm.DB

	err := withRetry("postgres", d.RetryCount, d.RetryInterval, func() error {
		conn, err := gorm.Open(postgres.Open(d.ConnectStr), &gorm.Config{
			Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
		})
		if err != nil {
			return err
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Log.Info("postgres connected", zap.Int("retry_count", d.RetryCount))
	return db, nil
}

// PGDSN builds a key/value dsn for the gorm postgres driver
func PGDSN(host string, port int, user, password, database string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, database, port)
}
