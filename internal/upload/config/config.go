package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

// Config holds Upload Service configuration
type Config struct {
	Server ServerConfig  `json:"server" yaml:"server"`
	Upload UploadConfig  `json:"upload" yaml:"upload"`
	Redis  RedisConfig   `json:"redis" yaml:"redis"`
	Logger logger.Config `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type UploadConfig struct {
	NodeID             int64    `json:"node_id" yaml:"node_id"`
	TmpDir             string   `json:"tmp_dir" yaml:"tmp_dir"`
	DstDir             string   `json:"dst_dir" yaml:"dst_dir"`
	ClearTmpTimeMS     int64    `json:"clear_tmp_time_ms" yaml:"clear_tmp_time_ms"`
	ClearTmpIntervalMS int64    `json:"clear_tmp_interval_ms" yaml:"clear_tmp_interval_ms"`
	MaxFileSize        int64    `json:"max_file_size" yaml:"max_file_size"`
	Fields             []string `json:"fields" yaml:"fields"`                 // empty = accept any field
	AllowedTypes       []string `json:"allowed_types" yaml:"allowed_types"`   // mime prefixes or extensions, empty = accept any
	PurgeWorkers       int      `json:"purge_workers" yaml:"purge_workers"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8090",
		},
		Upload: UploadConfig{
			NodeID:             1,
			TmpDir:             "./data/tmp",
			DstDir:             "./data/files",
			ClearTmpTimeMS:     int64(4 * time.Hour / time.Millisecond),
			ClearTmpIntervalMS: int64(5 * time.Minute / time.Millisecond),
			MaxFileSize:        100 * 1024 * 1024, // 100MB
			PurgeWorkers:       4,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// ClearTmpTime returns the staged-entry expiry duration with safe default.
// It must stay large relative to any realistic upload+commit duration; only
// forced sweeps may remove entries younger than this.
func (c *UploadConfig) ClearTmpTime() time.Duration {
	if c.ClearTmpTimeMS > 0 {
		return time.Duration(c.ClearTmpTimeMS) * time.Millisecond
	}
	return 4 * time.Hour
}

// ClearTmpInterval returns the reaper sweep period with safe default.
func (c *UploadConfig) ClearTmpInterval() time.Duration {
	if c.ClearTmpIntervalMS > 0 {
		return time.Duration(c.ClearTmpIntervalMS) * time.Millisecond
	}
	return 5 * time.Minute
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "upload", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// MustLoad loads configuration or exits on error
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
