package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port string `yaml:"port" env:"PORT" env-default:"8090"`

	// Auth
	APIKey string `yaml:"api_key" env:"API_KEY"`

	// Storage
	DBPath string `yaml:"db_path" env:"DB_PATH" env-default:"./oimdp.db"`

	// Pathstore mirror, disabled when the URL is empty
	PathstoreURL    string `yaml:"pathstore_url"     env:"PATHSTORE_URL"`
	PathstoreAPIKey string `yaml:"pathstore_api_key" env:"PATHSTORE_API_KEY"`

	// Worker pool
	WorkerCount        int `yaml:"worker_count"         env:"WORKER_COUNT"         env-default:"4"`
	MaxQueueSize       int `yaml:"max_queue_size"       env:"MAX_QUEUE_SIZE"       env-default:"100"`
	MaxConcurrentStore int `yaml:"max_concurrent_store" env:"MAX_CONCURRENT_STORE" env-default:"10"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"52428800"`

	// Chunking defaults
	DefaultChunkSize    int `yaml:"default_chunk_size"    env:"DEFAULT_CHUNK_SIZE"    env-default:"1500"`
	DefaultChunkOverlap int `yaml:"default_chunk_overlap" env:"DEFAULT_CHUNK_OVERLAP" env-default:"200"`

	// Job state and statistics
	JobTTL      time.Duration `yaml:"job_ttl"      env:"JOB_TTL"      env-default:"1h"`
	StatsWindow time.Duration `yaml:"stats_window" env:"STATS_WINDOW" env-default:"1h"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext" env:"PDF_FALLBACK_PDFTOTEXT" env-default:"true"`

	// Logging
	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"  env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads configuration from an optional YAML file overlaid by
// environment variables. The file is CONFIG_PATH, or ./config.yaml when
// that exists; an explicit CONFIG_PATH that cannot be read is an error.
func Load() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return Config{}, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxConcurrentStore <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_STORE must be positive, got %d", c.MaxConcurrentStore)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.DefaultChunkSize <= 0 {
		return fmt.Errorf("DEFAULT_CHUNK_SIZE must be positive, got %d", c.DefaultChunkSize)
	}
	if c.DefaultChunkOverlap < 0 || c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP must be in [0, %d), got %d", c.DefaultChunkSize, c.DefaultChunkOverlap)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("JOB_TTL must be positive, got %s", c.JobTTL)
	}
	if c.StatsWindow <= 0 {
		return fmt.Errorf("STATS_WINDOW must be positive, got %s", c.StatsWindow)
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}
