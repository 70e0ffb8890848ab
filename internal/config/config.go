// Package config loads the service configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rejRoky/image-processing-photo-background-check/internal/engine"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // "debug" or "release"
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig selects the shared result-cache backend. An empty Addr means
// the service uses its in-process cache instead.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type UploadConfig struct {
	MaxSizeMB         int64    `mapstructure:"max_size_mb"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MinDimension      int      `mapstructure:"min_dimension"`
	MaxDimension      int      `mapstructure:"max_dimension"`
}

type AnalysisConfig struct {
	WhiteThreshold      float64       `mapstructure:"white_threshold"`
	NumClusters         int           `mapstructure:"num_clusters"`
	WhiteColorThreshold int           `mapstructure:"white_color_threshold"`
	MaxPixelBudget      int           `mapstructure:"max_pixel_budget"`
	CacheEnabled        bool          `mapstructure:"cache_enabled"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from the YAML file at path, if given, then applies
// PHOTOCHECK_* environment overrides (e.g. PHOTOCHECK_SERVER_PORT). Missing
// values fall back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.allowed_types", []string{
		"image/jpeg", "image/png", "image/webp", "image/bmp", "image/gif",
	})
	v.SetDefault("upload.allowed_extensions", []string{
		".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif",
	})
	v.SetDefault("upload.min_dimension", 10)
	v.SetDefault("upload.max_dimension", 4096)

	v.SetDefault("analysis.white_threshold", 0.5)
	v.SetDefault("analysis.num_clusters", 2)
	v.SetDefault("analysis.white_color_threshold", 240)
	v.SetDefault("analysis.max_pixel_budget", 1_000_000)
	v.SetDefault("analysis.cache_enabled", true)
	v.SetDefault("analysis.cache_ttl", time.Hour)

	v.SetEnvPrefix("PHOTOCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// EngineConfig maps the analysis section onto the engine's parameter set.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		WhiteThreshold:      c.Analysis.WhiteThreshold,
		NumClusters:         c.Analysis.NumClusters,
		WhiteColorThreshold: c.Analysis.WhiteColorThreshold,
		MaxPixelBudget:      c.Analysis.MaxPixelBudget,
		CacheEnabled:        c.Analysis.CacheEnabled,
		CacheTTL:            c.Analysis.CacheTTL,
	}
}
