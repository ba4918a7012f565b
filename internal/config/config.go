package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Env      string `mapstructure:"ENV"`
	RESTPort string `mapstructure:"REST_PORT"`
	WSPort   string `mapstructure:"WS_PORT"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Data
	DataDir         string `mapstructure:"DATA_DIR"`
	OutputDir       string `mapstructure:"OUTPUT_DIR"`
	SourcesManifest string `mapstructure:"SOURCES_MANIFEST"`
	FirstSeason     int    `mapstructure:"FIRST_SEASON"`
	CurrentSeason   int    `mapstructure:"CURRENT_SEASON"`
	WriteOutputs    bool   `mapstructure:"WRITE_OUTPUTS"`

	// Scheduled reloads
	ReloadInterval  time.Duration `mapstructure:"RELOAD_INTERVAL"`
	DailyReloadHour int           `mapstructure:"DAILY_RELOAD_HOUR"`
	ReloadRetries   int           `mapstructure:"RELOAD_RETRIES"`

	// Storage and messaging, disabled when empty
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	// Similarity
	SimilarityTopN int           `mapstructure:"SIMILARITY_TOP_N"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("REST_PORT", "8080")
	v.SetDefault("WS_PORT", "8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("DATA_DIR", "temp_data")
	v.SetDefault("OUTPUT_DIR", "")
	v.SetDefault("SOURCES_MANIFEST", "sources.yaml")
	v.SetDefault("FIRST_SEASON", 2010)
	v.SetDefault("CURRENT_SEASON", 2026)
	v.SetDefault("WRITE_OUTPUTS", false)
	v.SetDefault("RELOAD_INTERVAL", "0s")
	v.SetDefault("DAILY_RELOAD_HOUR", -1)
	v.SetDefault("RELOAD_RETRIES", 3)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SIMILARITY_TOP_N", 28)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("CORS_ORIGINS", "*")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.FirstSeason > c.CurrentSeason {
		return fmt.Errorf("FIRST_SEASON %d is after CURRENT_SEASON %d", c.FirstSeason, c.CurrentSeason)
	}
	if c.SimilarityTopN <= 0 {
		return fmt.Errorf("SIMILARITY_TOP_N must be positive, got %d", c.SimilarityTopN)
	}
	if c.DailyReloadHour < -1 || c.DailyReloadHour > 23 {
		return fmt.Errorf("DAILY_RELOAD_HOUR must be -1 or 0-23, got %d", c.DailyReloadHour)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
