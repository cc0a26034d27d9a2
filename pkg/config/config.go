package config

import "time"

const (
	// MalformedRangeReject answer an unusable Range header with 400
	MalformedRangeReject = "reject"
	// MalformedRangeIgnore serve the whole file when the Range header is unusable
	MalformedRangeIgnore = "ignore"

	// DefaultChunkSize max bytes returned by one partial content response
	DefaultChunkSize int64 = 1024 * 1024
)

// Delivery definition delivery_service YAML structure
type Delivery struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	// ChunkSize caps the body of every 206 response
	ChunkSize      int64  `mapstructure:"chunk_size"`
	SegmentsRoot   string `mapstructure:"segments_root"`
	MalformedRange string `mapstructure:"malformed_range"`
	HonorRangeEnd  bool   `mapstructure:"honor_range_end"`

	// OriginPrefix object key prefix of processed HLS artifacts in MinIO
	OriginPrefix   string        `mapstructure:"origin_prefix"`
	RecordCacheTTL time.Duration `mapstructure:"record_cache_ttl"`

	// Records 沒有 pg 時預先載入記憶體的影片記錄
	Records []RecordSeed `mapstructure:"records"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	MinIO      MinIOConfig    `mapstructure:"minio"`
}

// RecordSeed one video record declared in YAML
type RecordSeed struct {
	ID          string `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	FilePath    string `mapstructure:"file_path"`
	ContentType string `mapstructure:"content_type"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	RedisDB  int    `mapstructure:"redis_db"`

	// MasterName/SentinelAddrs 有設定時改用 sentinel failover
	MasterName    string   `mapstructure:"master_name"`
	SentinelAddrs []string `mapstructure:"sentinel_addrs"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	BucketName    string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}

// Enabled reports whether a postgres host was configured
func (d DatabaseConfig) Enabled() bool { return d.Host != "" }

// Enabled reports whether redis was configured
func (r RedisConfig) Enabled() bool { return r.Addr != "" || len(r.SentinelAddrs) > 0 }

// Enabled reports whether minio was configured
func (m MinIOConfig) Enabled() bool { return m.Host != "" && m.BucketName != "" }
