// Package config provides configuration management for framepace using
// Viper. It supports configuration from files, environment variables, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultBufferCapacity  = 30
	defaultFrameRate       = 30.0
	defaultSyncThresholdMs = 40.0

	defaultSourceWidth  = 1280
	defaultSourceHeight = 720
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Buffer   BufferConfig   `mapstructure:"buffer"`
	Playback PlaybackConfig `mapstructure:"playback"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// BufferConfig holds frame ring and sync clock configuration.
type BufferConfig struct {
	// Capacity is the maximum number of buffered frame records.
	Capacity int `mapstructure:"capacity"`
	// FrameRate is the nominal video frame rate.
	FrameRate float64 `mapstructure:"frame_rate"`
	// SyncThresholdMs is the tolerated audio/video drift in milliseconds.
	SyncThresholdMs float64 `mapstructure:"sync_threshold_ms"`
}

// PlaybackConfig holds host playback loop configuration.
type PlaybackConfig struct {
	// StartFrame is the frame number playback begins at.
	StartFrame uint64 `mapstructure:"start_frame"`
	// TickInterval overrides the display tick; zero derives it from the
	// frame rate.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// SourceWidth and SourceHeight are the synthetic source dimensions.
	SourceWidth  int `mapstructure:"source_width"`
	SourceHeight int `mapstructure:"source_height"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with FRAMEPACE_, using underscores for nesting.
// Example: FRAMEPACE_BUFFER_CAPACITY=60.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/framepace")
		v.AddConfigPath("$HOME/.framepace")
	}

	v.SetEnvPrefix("FRAMEPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file so defaults are in
// place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Buffer defaults
	v.SetDefault("buffer.capacity", defaultBufferCapacity)
	v.SetDefault("buffer.frame_rate", defaultFrameRate)
	v.SetDefault("buffer.sync_threshold_ms", defaultSyncThresholdMs)

	// Playback defaults
	v.SetDefault("playback.start_frame", 0)
	v.SetDefault("playback.tick_interval", time.Duration(0))
	v.SetDefault("playback.source_width", defaultSourceWidth)
	v.SetDefault("playback.source_height", defaultSourceHeight)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Buffer.Capacity < 1 {
		return fmt.Errorf("buffer.capacity must be at least 1")
	}
	if c.Buffer.FrameRate <= 0 {
		return fmt.Errorf("buffer.frame_rate must be positive")
	}
	if c.Buffer.SyncThresholdMs < 0 {
		return fmt.Errorf("buffer.sync_threshold_ms must not be negative")
	}

	if c.Playback.SourceWidth < 1 || c.Playback.SourceHeight < 1 {
		return fmt.Errorf("playback source dimensions must be positive")
	}
	if c.Playback.TickInterval < 0 {
		return fmt.Errorf("playback.tick_interval must not be negative")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FrameInterval returns the display interval derived from the frame rate.
func (c *BufferConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.FrameRate)
}
