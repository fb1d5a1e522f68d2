package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Files     FilesConfig
	Pipeline  PipelineConfig
	Extractor ExtractorConfig
	State     StateConfig
	Storage   StorageConfig
	S3        S3Config
	Vision    VisionConfig
	Notify    NotifyConfig
	Log       LogConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings, shared by the pipeline server
// and the extraction service.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the postgres state
// backend.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// FilesConfig holds upload limits for the document queue.
type FilesConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// PipelineConfig holds page-processing settings.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ExtractorConfig holds settings for the extraction-service client, plus
// the port the service itself listens on.
type ExtractorConfig struct {
	URL         string `mapstructure:"url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	ListenPort  string `mapstructure:"listen_port"`
}

// StateConfig selects where the row table is persisted.
type StateConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "postgres"
	Path    string `mapstructure:"path"`    // file backend only
}

// StorageConfig selects where queued documents are stored.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "local" or "s3"
	LocalDir string `mapstructure:"local_dir"`
}

// S3Config holds AWS S3 settings for the s3 storage backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// VisionConfig holds settings for the vision model behind the extraction
// service.
type VisionConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// NotifyConfig holds run-completion notification settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the CMRV2_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CMRV2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "cmrv2")
	v.SetDefault("db.password", "cmrv2_secret")
	v.SetDefault("db.name", "cmrv2_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// File queue defaults
	v.SetDefault("files.max_file_size_mb", 50)

	// Pipeline defaults. Two pages in flight protects the rasterizer and
	// the extraction service.
	v.SetDefault("pipeline.concurrency", 2)

	// Extraction client defaults; the service listens where the client
	// expects it.
	v.SetDefault("extractor.url", "http://localhost:8090/extract")
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.listen_port", ":8090")

	// State defaults
	v.SetDefault("state.backend", "file")
	v.SetDefault("state.path", "data/rows.json")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "data/queue")

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "cmrv2-documents")
	v.SetDefault("s3.endpoint", "")

	// Vision defaults
	v.SetDefault("vision.provider", "claude")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("vision.timeout_secs", 120)

	// Notification defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "eu-west-1")
	v.SetDefault("notify.from_address", "noreply@skiltontrading.nl")
	v.SetDefault("notify.from_name", "CMR Verwerking")
	v.SetDefault("notify.to_address", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "CMRV2_SERVER_PORT",
		"server.read_timeout":    "CMRV2_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "CMRV2_SERVER_WRITE_TIMEOUT",
		"server.environment":     "CMRV2_SERVER_ENVIRONMENT",
		"db.host":                "CMRV2_DB_HOST",
		"db.port":                "CMRV2_DB_PORT",
		"db.user":                "CMRV2_DB_USER",
		"db.password":            "CMRV2_DB_PASSWORD",
		"db.name":                "CMRV2_DB_NAME",
		"db.sslmode":             "CMRV2_DB_SSLMODE",
		"db.max_open":            "CMRV2_DB_MAX_OPEN",
		"db.max_idle":            "CMRV2_DB_MAX_IDLE",
		"files.max_file_size_mb": "CMRV2_FILES_MAX_FILE_SIZE_MB",
		"pipeline.concurrency":   "CMRV2_PIPELINE_CONCURRENCY",
		"extractor.url":          "CMRV2_EXTRACTOR_URL",
		"extractor.timeout_secs": "CMRV2_EXTRACTOR_TIMEOUT_SECS",
		"extractor.listen_port":  "CMRV2_EXTRACTOR_LISTEN_PORT",
		"state.backend":          "CMRV2_STATE_BACKEND",
		"state.path":             "CMRV2_STATE_PATH",
		"storage.backend":        "CMRV2_STORAGE_BACKEND",
		"storage.local_dir":      "CMRV2_STORAGE_LOCAL_DIR",
		"s3.region":              "CMRV2_S3_REGION",
		"s3.bucket":              "CMRV2_S3_BUCKET",
		"s3.endpoint":            "CMRV2_S3_ENDPOINT",
		"s3.access_key":          "CMRV2_S3_ACCESS_KEY",
		"s3.secret_key":          "CMRV2_S3_SECRET_KEY",
		"vision.provider":        "CMRV2_VISION_PROVIDER",
		"vision.api_key":         "CMRV2_VISION_API_KEY",
		"vision.default_model":   "CMRV2_VISION_DEFAULT_MODEL",
		"vision.timeout_secs":    "CMRV2_VISION_TIMEOUT_SECS",
		"notify.provider":        "CMRV2_NOTIFY_PROVIDER",
		"notify.region":          "CMRV2_NOTIFY_REGION",
		"notify.from_address":    "CMRV2_NOTIFY_FROM_ADDRESS",
		"notify.from_name":       "CMRV2_NOTIFY_FROM_NAME",
		"notify.to_address":      "CMRV2_NOTIFY_TO_ADDRESS",
		"log.level":              "CMRV2_LOG_LEVEL",
		"log.format":             "CMRV2_LOG_FORMAT",
		"cors.allowed_origins":   "CMRV2_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CMRV2_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CMRV2_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Files = FilesConfig{
		MaxFileSizeMB: v.GetInt64("files.max_file_size_mb"),
	}
	cfg.Pipeline = PipelineConfig{
		Concurrency: v.GetInt("pipeline.concurrency"),
	}
	cfg.Extractor = ExtractorConfig{
		URL:         v.GetString("extractor.url"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
		ListenPort:  v.GetString("extractor.listen_port"),
	}
	cfg.State = StateConfig{
		Backend: v.GetString("state.backend"),
		Path:    v.GetString("state.path"),
	}
	cfg.Storage = StorageConfig{
		Backend:  v.GetString("storage.backend"),
		LocalDir: v.GetString("storage.local_dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Vision = VisionConfig{
		Provider:     v.GetString("vision.provider"),
		APIKey:       v.GetString("vision.api_key"),
		DefaultModel: v.GetString("vision.default_model"),
		TimeoutSecs:  v.GetInt("vision.timeout_secs"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		ToAddress:   v.GetString("notify.to_address"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
