package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort   int           `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"min=0"`

	// Extraction Configuration
	YtdlpPath        string        `mapstructure:"YTDLP_PATH" validate:"required"`
	YtdlpSearchPaths string        `mapstructure:"YTDLP_SEARCH_PATHS"`
	YtdlpExtraArgs   string        `mapstructure:"YTDLP_EXTRA_ARGS"`
	ProcessTimeout   time.Duration `mapstructure:"PROCESS_TIMEOUT" validate:"min=0"`

	// Artifact Configuration
	TempDir         string `mapstructure:"TEMP_DIR"`
	ArtifactPrefix  string `mapstructure:"ARTIFACT_PREFIX" validate:"required,excludesall=/\\"`
	StreamChunkSize string `mapstructure:"STREAM_CHUNK_SIZE" validate:"required"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=text json"`

	// Derived at load time.
	StreamChunkBytes int `mapstructure:"-"`
}

const maxChunkBytes = 16 << 20

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("mapstructure")
		if tag != "" && tag != "-" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 3000)
	viper.SetDefault("BODY_LIMIT", "64K")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("YTDLP_SEARCH_PATHS", strings.Join([]string{"/opt/homebrew/bin", "/usr/local/bin"}, string(filepath.ListSeparator)))
	viper.SetDefault("PROCESS_TIMEOUT", "0s")
	viper.SetDefault("ARTIFACT_PREFIX", "aquatube")
	viper.SetDefault("STREAM_CHUNK_SIZE", "32KiB")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.YtdlpPath = strings.TrimSpace(cfg.YtdlpPath)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	chunk, err := humanize.ParseBytes(cfg.StreamChunkSize)
	if err != nil {
		return nil, fmt.Errorf("parse STREAM_CHUNK_SIZE: %w", err)
	}
	if chunk == 0 || chunk > maxChunkBytes {
		return nil, fmt.Errorf("STREAM_CHUNK_SIZE must be between 1B and %s", humanize.IBytes(maxChunkBytes))
	}
	cfg.StreamChunkBytes = int(chunk)

	if _, err := humanize.ParseBytes(cfg.BodyLimit); err != nil {
		return nil, fmt.Errorf("parse BODY_LIMIT: %w", err)
	}

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"ytdlp_path", cfg.YtdlpPath,
		"temp_dir", cfg.TempDir,
		"chunk_size", humanize.IBytes(chunk),
		"process_timeout", cfg.ProcessTimeout,
	)
	return &cfg, nil
}

// SearchPaths splits YTDLP_SEARCH_PATHS on the OS list separator.
func (c *Config) SearchPaths() []string {
	var out []string
	for _, p := range filepath.SplitList(c.YtdlpSearchPaths) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtraArgs splits YTDLP_EXTRA_ARGS on commas.
func (c *Config) ExtraArgs() []string {
	var out []string
	for _, a := range strings.Split(c.YtdlpExtraArgs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
