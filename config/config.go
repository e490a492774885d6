// SPDX-License-Identifier: EPL-2.0

// Package config loads the audmix configuration from a YAML file, a .env
// file and AUDMIX_* environment variables, in that order of precedence from
// lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backend kinds.
const (
	StoreDir    = "dir"
	StoreMinio  = "minio"
	StoreMemory = "memory"
)

// MixConfig holds the default mix parameters.
type MixConfig struct {
	GainA    float64 `yaml:"gain_a"`
	GainB    float64 `yaml:"gain_b"`
	Resample bool    `yaml:"resample"`
	// CacheSize is the number of decoded clips kept in memory, 0 disables
	// the cache.
	CacheSize int `yaml:"cache_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	MaxUpload int64  `yaml:"max_upload"`
}

// MinioConfig points at an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// StoreConfig selects and configures the library backend.
type StoreConfig struct {
	Kind  string      `yaml:"kind"`
	Dir   string      `yaml:"dir"`
	Minio MinioConfig `yaml:"minio"`
}

// LogConfig stores the logging configuration.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Config stores the application configuration.
type Config struct {
	Mix    MixConfig    `yaml:"mix"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Mix:   MixConfig{GainA: 0.7, GainB: 0.7},
		Store: StoreConfig{Kind: StoreDir, Dir: "library"},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Server: ServerConfig{Addr: ":8080", MaxUpload: 64 << 20},
	}
}

// Load builds the configuration. path names an optional YAML file; envFiles
// are loaded into the environment first, defaulting to ./.env when present.
// Variables already set in the environment win over .env entries.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env: %w", err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	var err error
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && err == nil {
			var f float64
			if f, err = strconv.ParseFloat(v, 64); err != nil {
				err = fmt.Errorf("%s: %w", key, err)
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && err == nil {
			var b bool
			if b, err = strconv.ParseBool(v); err != nil {
				err = fmt.Errorf("%s: %w", key, err)
				return
			}
			*dst = b
		}
	}

	float("AUDMIX_GAIN_A", &c.Mix.GainA)
	float("AUDMIX_GAIN_B", &c.Mix.GainB)
	boolean("AUDMIX_RESAMPLE", &c.Mix.Resample)
	if v, ok := lookup("AUDMIX_CACHE_SIZE"); ok && err == nil {
		if c.Mix.CacheSize, err = strconv.Atoi(v); err != nil {
			err = fmt.Errorf("AUDMIX_CACHE_SIZE: %w", err)
		}
	}

	str("AUDMIX_STORE", &c.Store.Kind)
	str("AUDMIX_STORE_DIR", &c.Store.Dir)
	str("AUDMIX_MINIO_ENDPOINT", &c.Store.Minio.Endpoint)
	str("AUDMIX_MINIO_ACCESS_KEY", &c.Store.Minio.AccessKey)
	str("AUDMIX_MINIO_SECRET_KEY", &c.Store.Minio.SecretKey)
	str("AUDMIX_MINIO_BUCKET", &c.Store.Minio.Bucket)
	str("AUDMIX_MINIO_REGION", &c.Store.Minio.Region)
	boolean("AUDMIX_MINIO_USE_SSL", &c.Store.Minio.UseSSL)

	str("AUDMIX_LOG_LEVEL", &c.Log.Level)
	str("AUDMIX_LOG_FORMAT", &c.Log.Format)
	str("AUDMIX_LOG_FILE", &c.Log.File)

	str("AUDMIX_SERVER_ADDR", &c.Server.Addr)

	return err
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	for name, g := range map[string]float64{"gain_a": c.Mix.GainA, "gain_b": c.Mix.GainB} {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("mix.%s must be a finite number, got %v", name, g)
		}
	}

	if c.Mix.CacheSize < 0 {
		return fmt.Errorf("mix.cache_size must not be negative, got %d", c.Mix.CacheSize)
	}
	if c.Server.MaxUpload < 0 {
		return fmt.Errorf("server.max_upload must not be negative, got %d", c.Server.MaxUpload)
	}

	switch c.Store.Kind {
	case StoreDir:
		if c.Store.Dir == "" {
			return errors.New("store.dir is required for the dir store")
		}
	case StoreMinio:
		if c.Store.Minio.Endpoint == "" || c.Store.Minio.Bucket == "" {
			return errors.New("store.minio.endpoint and store.minio.bucket are required for the minio store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}

	return nil
}
