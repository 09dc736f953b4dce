package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig configures the logrus setup.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format" json:"format"`

	// Output is "stdout", "stderr" or "file".
	Output string `yaml:"output" json:"output"`

	// File is the log file path when Output is "file".
	File string `yaml:"file" json:"file"`

	// EnableTimestamp enables full timestamps in text format.
	EnableTimestamp bool `yaml:"enable_timestamp" json:"enable_timestamp"`

	// EnableColors enables colored text output.
	EnableColors bool `yaml:"enable_colors" json:"enable_colors"`
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:           "info",
		Format:          "text",
		Output:          "stdout",
		EnableTimestamp: true,
		EnableColors:    true,
	}
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid log format: %s, must be 'text' or 'json'", c.Format)
	}
	if c.Output != "stdout" && c.Output != "stderr" && c.Output != "file" {
		return fmt.Errorf("invalid log output: %s, must be 'stdout', 'stderr', or 'file'", c.Output)
	}
	if c.Output == "file" && c.File == "" {
		return fmt.Errorf("log file path is required when output is 'file'")
	}
	return nil
}

// ApplyEnv overrides the configuration from GSTKIT_LOG_* environment
// variables.
func (c *LoggingConfig) ApplyEnv() {
	if level := os.Getenv("GSTKIT_LOG_LEVEL"); level != "" {
		c.Level = strings.ToLower(level)
	}
	if format := os.Getenv("GSTKIT_LOG_FORMAT"); format != "" {
		c.Format = format
	}
	if output := os.Getenv("GSTKIT_LOG_OUTPUT"); output != "" {
		c.Output = output
	}
	if file := os.Getenv("GSTKIT_LOG_FILE"); file != "" {
		c.File = file
		if c.Output == "" {
			c.Output = "file"
		}
	}
}

// SetupLogger configures the global logrus logger from the given
// configuration.
func SetupLogger(config *LoggingConfig) error {
	if config == nil {
		config = DefaultLoggingConfig()
	}
	if err := config.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	switch config.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: config.EnableTimestamp,
			ForceColors:   config.EnableColors,
		})
	}

	switch config.Output {
	case "stderr":
		logrus.SetOutput(os.Stderr)
	case "file":
		file, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logrus.SetOutput(file)
	default:
		logrus.SetOutput(os.Stdout)
	}
	return nil
}
