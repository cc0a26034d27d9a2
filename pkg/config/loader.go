package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvInfo 服務設定 from .env
type EnvInfo struct {
	// image name
	Delivery string

	// service port
	DeliveryPort string

	// service yaml path
	DeliveryYAMLPath string

	// service log path
	DeliveryLogPath string
}

// EnvConfig 服務設定
var (
	EnvConfig = initEnv()
	envConfig EnvInfo
	once      sync.Once
	env       string
)

func initEnv() EnvInfo {
	once.Do(func() {
		path, err := GetPath(".env", 5)
		if err != nil {
			log.Printf("Warning: Could not get .env path: %v", err)
		}

		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}

		env = os.Getenv("ENV")

		envConfig = EnvInfo{
			Delivery:         getEnv("DELIVERY_SERVICE", "delivery_service"),
			DeliveryPort:     os.Getenv("DELIVERY_SERVICE_PORT"),
			DeliveryYAMLPath: getEnv("DELIVERY_SERVICE_YAML", "./config"),
			DeliveryLogPath:  getEnv("DELIVERY_SERVICE_LOG", "./logs"),
		}
	})

	return envConfig
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsProduction check run env
func IsProduction() bool {
	return env == "production"
}

// IsLocal check run env
func IsLocal() bool {
	return env == "local"
}

// LoadConfig 加載配置, 失敗直接結束程式
func LoadConfig[T any](serviceName string, configPath string) T {
	cfg, err := ReadConfig[T](serviceName, configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

// ReadConfig reads {configPath}/{serviceName}.yaml, expands ${ENV} placeholders and
// unmarshals the result into T
func ReadConfig[T any](serviceName string, configPath string) (T, error) {
	var cfg T

	v := viper.New()
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	rawConfig, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		return cfg, fmt.Errorf("read raw config file: %w", err)
	}

	// 替換 ${} 占位符為環境變數的值
	expandedConfig := os.ExpandEnv(string(rawConfig))

	if err := v.ReadConfig(bytes.NewBufferString(expandedConfig)); err != nil {
		return cfg, fmt.Errorf("read expanded config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ip", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("segments_root", "./hls")
	v.SetDefault("malformed_range", MalformedRangeReject)
	v.SetDefault("origin_prefix", "processed")
	v.SetDefault("record_cache_ttl", "10m")
	v.SetDefault("pg.retry_count", 5)
	v.SetDefault("pg.retry_interval", 2)
	v.SetDefault("minio.retry_count", 5)
	v.SetDefault("minio.retry_interval", "2s")
}

// Validate checks the values the delivery engine depends on
func (d Delivery) Validate() error {
	if d.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", d.ChunkSize)
	}
	if d.SegmentsRoot == "" {
		return errors.New("segments_root is required")
	}
	switch d.MalformedRange {
	case MalformedRangeReject, MalformedRangeIgnore:
	default:
		return fmt.Errorf("malformed_range must be %q or %q, got %q", MalformedRangeReject, MalformedRangeIgnore, d.MalformedRange)
	}
	return nil
}

// GetPath use fileName loop maxCount find file path
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + " can't find path")
}
