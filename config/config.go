// Package config handles loading and validation of bridge configuration from
// environment variables using Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/wayfarerhq/mapbridge/logger"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds the HTTP server settings for the viewer channel.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// RedisConfig holds connection details for the cartography cache.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// BridgeConfig holds the endpoints of the native positioning engine.
type BridgeConfig struct {
	// BaseURL is the HTTP endpoint for request/response operations.
	BaseURL string `mapstructure:"BASE_URL" yaml:"base_url"`
	// EventsURL is the WebSocket endpoint streaming engine events. Derived
	// from BaseURL when empty.
	EventsURL      string `mapstructure:"EVENTS_URL" yaml:"events_url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// ViewerConfig parameterizes the embedded map viewer.
type ViewerConfig struct {
	Domain             string `mapstructure:"DOMAIN" yaml:"domain"`
	APIKey             string `mapstructure:"API_KEY" yaml:"api_key"`
	BuildingIdentifier string `mapstructure:"BUILDING_IDENTIFIER" yaml:"building_identifier"`
	Profile            string `mapstructure:"PROFILE" yaml:"profile"`
	// RemoteIdentifier is deprecated; Profile takes precedence when both are
	// set.
	RemoteIdentifier string `mapstructure:"REMOTE_IDENTIFIER" yaml:"remote_identifier"`
	Language         string `mapstructure:"LANGUAGE" yaml:"language"`
}

// CacheConfig controls the cartography cache.
type CacheConfig struct {
	// MaxAgeSeconds is the TTL applied to cached cartography. Zero disables
	// expiry.
	MaxAgeSeconds int `mapstructure:"MAX_AGE_SECONDS" yaml:"max_age_seconds"`
}

// Config is the root configuration.
type Config struct {
	Server ServerConfig `mapstructure:"SERVER" yaml:"server"`
	Redis  RedisConfig  `mapstructure:"REDIS" yaml:"redis"`
	Bridge BridgeConfig `mapstructure:"BRIDGE" yaml:"bridge"`
	Viewer ViewerConfig `mapstructure:"VIEWER" yaml:"viewer"`
	Cache  CacheConfig  `mapstructure:"CACHE" yaml:"cache"`
}

// IsDevelopment returns true when running in development.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true when running in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables, applies
// defaults, unmarshals and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("BRIDGE.BASE_URL", "http://localhost:9400")
	v.SetDefault("BRIDGE.TIMEOUT_SECONDS", 7)
	v.SetDefault("VIEWER.DOMAIN", "https://maps.wayfarerhq.com")
	v.SetDefault("VIEWER.BUILDING_IDENTIFIER", "")
	v.SetDefault("CACHE.MAX_AGE_SECONDS", 3600)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"BRIDGE.BASE_URL", "BRIDGE_BASE_URL"},
		{"BRIDGE.EVENTS_URL", "BRIDGE_EVENTS_URL"},
		{"BRIDGE.TIMEOUT_SECONDS", "BRIDGE_TIMEOUT_SECONDS"},
		{"VIEWER.DOMAIN", "VIEWER_DOMAIN"},
		{"VIEWER.API_KEY", "VIEWER_API_KEY"},
		{"VIEWER.BUILDING_IDENTIFIER", "VIEWER_BUILDING_IDENTIFIER"},
		{"VIEWER.PROFILE", "VIEWER_PROFILE"},
		{"VIEWER.REMOTE_IDENTIFIER", "VIEWER_REMOTE_IDENTIFIER"},
		{"VIEWER.LANGUAGE", "VIEWER_LANGUAGE"},
		{"CACHE.MAX_AGE_SECONDS", "CACHE_MAX_AGE_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"bridgeURL", cfg.Bridge.BaseURL,
		"viewerDomain", cfg.Viewer.Domain,
	)
	return &cfg, nil
}

// Validate checks the loaded configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s", c.Server.Environment)
	}
	if _, err := url.Parse(c.Bridge.BaseURL); err != nil {
		return fmt.Errorf("invalid bridge base URL %q: %w", c.Bridge.BaseURL, err)
	}
	if c.Viewer.Domain != "" {
		u, err := url.Parse(c.Viewer.Domain)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid viewer domain %q", c.Viewer.Domain)
		}
	}
	if c.Cache.MaxAgeSeconds < 0 {
		return fmt.Errorf("cache max age must not be negative")
	}
	return nil
}

// EffectiveProfile resolves the viewer profile, honouring the deprecated
// remote identifier only when no profile is set.
func (v *ViewerConfig) EffectiveProfile() string {
	if v.Profile != "" {
		return v.Profile
	}
	return v.RemoteIdentifier
}
