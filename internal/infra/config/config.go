package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Storage      StorageConfig      `yaml:"storage"`
	Cache        CacheConfig        `yaml:"cache"`
	Sync         SyncConfig         `yaml:"sync"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Images       ImagesConfig       `yaml:"images"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// StorageConfig selects and configures the durable key/value driver.
type StorageConfig struct {
	Driver    string         `yaml:"driver"`
	Namespace string         `yaml:"namespace"`
	SQLite    SQLiteConfig   `yaml:"sqlite"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Valkey    ValkeyConfig   `yaml:"valkey"`
}

// SQLiteConfig holds the path of the embedded database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for a Valkey-backed store.
type ValkeyConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig tunes the history and weather cache behavior.
type CacheConfig struct {
	WeatherTTL     time.Duration `yaml:"weatherTtl"`
	ScanHistoryCap int           `yaml:"scanHistoryCap"`
	ChatHistoryCap int           `yaml:"chatHistoryCap"`
	CoordPrecision int           `yaml:"coordPrecision"`
}

// SyncConfig drives the pending-sync drain loop.
type SyncConfig struct {
	DrainInterval   time.Duration `yaml:"drainInterval"`
	BaseBackoff     time.Duration `yaml:"baseBackoff"`
	MaxBackoff      time.Duration `yaml:"maxBackoff"`
	SyncedRetention time.Duration `yaml:"syncedRetention"`
}

// ConnectivityConfig controls the online/offline probe.
type ConnectivityConfig struct {
	ProbeURL      string        `yaml:"probeUrl"`
	ProbeInterval time.Duration `yaml:"probeInterval"`
	ProbeTimeout  time.Duration `yaml:"probeTimeout"`
}

// AnalysisConfig contains the remote analysis backend settings.
type AnalysisConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Timeout  time.Duration `yaml:"timeout"`
	Language string        `yaml:"language"`
}

// ImagesConfig selects the scan image storage backend.
type ImagesConfig struct {
	Driver string   `yaml:"driver"`
	S3     S3Config `yaml:"s3"`
}

// S3Config contains credentials for an S3-compatible object store.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_NAMESPACE"); v != "" {
		cfg.Storage.Namespace = v
	}
	if v := os.Getenv("STORAGE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("STORAGE_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("STORAGE_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("STORAGE_VALKEY_ADDR"); v != "" {
		cfg.Storage.Valkey.Addr = v
	}
	if v := os.Getenv("CACHE_WEATHER_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.WeatherTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_SCAN_HISTORY_CAP"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.ScanHistoryCap = parsed
		}
	}
	if v := os.Getenv("CACHE_CHAT_HISTORY_CAP"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.ChatHistoryCap = parsed
		}
	}
	if v := os.Getenv("SYNC_DRAIN_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sync.DrainInterval = parsed
		}
	}
	if v := os.Getenv("CONNECTIVITY_PROBE_URL"); v != "" {
		cfg.Connectivity.ProbeURL = v
	}
	if v := os.Getenv("CONNECTIVITY_PROBE_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Connectivity.ProbeInterval = parsed
		}
	}
	if v := os.Getenv("ANALYSIS_BASE_URL"); v != "" {
		cfg.Analysis.BaseURL = v
	}
	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Analysis.Timeout = parsed
		}
	}
	if v := os.Getenv("ANALYSIS_LANGUAGE"); v != "" {
		cfg.Analysis.Language = v
	}
	if v := os.Getenv("IMAGES_DRIVER"); v != "" {
		cfg.Images.Driver = v
	}
	if v := os.Getenv("IMAGES_S3_ENDPOINT"); v != "" {
		cfg.Images.S3.Endpoint = v
	}
	if v := os.Getenv("IMAGES_S3_ACCESS_KEY"); v != "" {
		cfg.Images.S3.AccessKey = v
	}
	if v := os.Getenv("IMAGES_S3_SECRET_KEY"); v != "" {
		cfg.Images.S3.SecretKey = v
	}
	if v := os.Getenv("IMAGES_S3_BUCKET"); v != "" {
		cfg.Images.S3.Bucket = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 35 * time.Second,
		},
		Storage: StorageConfig{
			Driver:    "sqlite",
			Namespace: "agroai_",
			SQLite: SQLiteConfig{
				Path: "agroai.db",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Cache: CacheConfig{
			WeatherTTL:     15 * time.Minute,
			ScanHistoryCap: 50,
			ChatHistoryCap: 100,
			CoordPrecision: 2,
		},
		Sync: SyncConfig{
			DrainInterval:   time.Minute,
			BaseBackoff:     30 * time.Second,
			MaxBackoff:      30 * time.Minute,
			SyncedRetention: 24 * time.Hour,
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval: 15 * time.Second,
			ProbeTimeout:  5 * time.Second,
		},
		Analysis: AnalysisConfig{
			BaseURL:  "http://localhost:8000",
			Timeout:  30 * time.Second,
			Language: "en",
		},
		Images: ImagesConfig{
			Driver: "memory",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "valkey":
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Storage.Namespace == "" {
		return errors.New("storage.namespace cannot be empty")
	}
	if c.Storage.Driver == "sqlite" && strings.TrimSpace(c.Storage.SQLite.Path) == "" {
		return errors.New("storage.sqlite.path cannot be empty when the sqlite driver is selected")
	}
	if c.Storage.Driver == "valkey" && strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
		return errors.New("storage.valkey.addr cannot be empty when the valkey driver is selected")
	}
	if c.Cache.WeatherTTL <= 0 {
		return errors.New("cache.weatherTtl must be positive")
	}
	if c.Cache.ScanHistoryCap <= 0 {
		return errors.New("cache.scanHistoryCap must be positive")
	}
	if c.Cache.ChatHistoryCap <= 0 {
		return errors.New("cache.chatHistoryCap must be positive")
	}
	if c.Cache.CoordPrecision < 0 || c.Cache.CoordPrecision > 6 {
		return errors.New("cache.coordPrecision must be between 0 and 6")
	}
	if c.Sync.DrainInterval <= 0 {
		return errors.New("sync.drainInterval must be positive")
	}
	if c.Sync.BaseBackoff <= 0 || c.Sync.MaxBackoff < c.Sync.BaseBackoff {
		return errors.New("sync backoff bounds are inconsistent")
	}
	if c.Connectivity.ProbeInterval <= 0 {
		return errors.New("connectivity.probeInterval must be positive")
	}
	if c.Analysis.BaseURL == "" {
		return errors.New("analysis.baseUrl cannot be empty")
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis.timeout must be positive")
	}
	switch c.Images.Driver {
	case "memory", "s3":
	default:
		return fmt.Errorf("images.driver %q is not supported", c.Images.Driver)
	}
	return nil
}
