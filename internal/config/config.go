package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"camera-downloader/internal/scanner"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	SourceDirectory      string           `mapstructure:"source_directory" validate:"required"`
	DestinationDirectory string           `mapstructure:"destination_directory" validate:"required"`
	ImagePattern         string           `mapstructure:"image_pattern"`
	Processing           ProcessingConfig `mapstructure:"processing"`
	Metadata             MetadataConfig   `mapstructure:"metadata"`
	Logging              LoggingConfig    `mapstructure:"logging"`
}

// ProcessingConfig contains file processing settings
type ProcessingConfig struct {
	Strict       bool `mapstructure:"strict"`
	DryRun       bool `mapstructure:"dry_run"`
	PreserveMode bool `mapstructure:"preserve_mode"`
}

// MetadataConfig selects how capture timestamps are read
type MetadataConfig struct {
	Reader string `mapstructure:"reader"` // goexif, exiftool
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text, json
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ImagePattern: scanner.ImagePattern,
		Processing: ProcessingConfig{
			Strict:       false,
			DryRun:       false,
			PreserveMode: false,
		},
		Metadata: MetadataConfig{
			Reader: "goexif",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// Values already bound on v (for example from command-line flags) take
// precedence over both.
func LoadConfig(v *viper.Viper, configPath string) (*Config, error) {
	config := DefaultConfig()

	setDefaults(v, config)
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config file in current directory and home directory
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.camera-downloader")
		v.AddConfigPath("/etc/camera-downloader")
	}

	// Enable environment variable support
	v.SetEnvPrefix("CAMERA_DOWNLOADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so that AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("source_directory", c.SourceDirectory)
	v.SetDefault("destination_directory", c.DestinationDirectory)
	v.SetDefault("image_pattern", c.ImagePattern)
	v.SetDefault("processing.strict", c.Processing.Strict)
	v.SetDefault("processing.dry_run", c.Processing.DryRun)
	v.SetDefault("processing.preserve_mode", c.Processing.PreserveMode)
	v.SetDefault("metadata.reader", c.Metadata.Reader)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.file_path", c.Logging.FilePath)
	v.SetDefault("logging.max_size", c.Logging.MaxSize)
	v.SetDefault("logging.max_backups", c.Logging.MaxBackups)
	v.SetDefault("logging.max_age", c.Logging.MaxAge)
	v.SetDefault("logging.compress", c.Logging.Compress)
}

// Validate validates the configuration.
// Source directory existence is checked by the organizer, not here.
func (c *Config) Validate() error {
	if c.SourceDirectory == "" {
		return fmt.Errorf("source_directory is required")
	}

	if c.DestinationDirectory == "" {
		return fmt.Errorf("destination_directory is required")
	}

	if c.ImagePattern == "" {
		c.ImagePattern = scanner.ImagePattern
	}
	if _, err := filepath.Match(c.ImagePattern, ""); err != nil {
		return fmt.Errorf("invalid image_pattern %q: %w", c.ImagePattern, err)
	}

	validReaders := map[string]bool{
		"goexif":   true,
		"exiftool": true,
	}
	if c.Metadata.Reader == "" {
		c.Metadata.Reader = "goexif"
	}
	if !validReaders[c.Metadata.Reader] {
		return fmt.Errorf("invalid metadata reader: %s (valid: goexif, exiftool)", c.Metadata.Reader)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "":
		c.Logging.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}
