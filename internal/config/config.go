// Package config aggregates the yaml configuration for gstctl and the
// monitor surface.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration aggregator.
type Config struct {
	// Logging configuration.
	Logging *LoggingConfig `yaml:"logging" json:"logging"`

	// Pipeline description: the elements to create and link, in order.
	Pipeline *PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// Monitor is the optional HTTP debug surface.
	Monitor *MonitorConfig `yaml:"monitor" json:"monitor"`

	// StateTimeout bounds waits for asynchronous state transitions.
	StateTimeout time.Duration `yaml:"state_timeout" json:"state_timeout"`
}

// PipelineConfig describes a pipeline as an ordered element chain.
type PipelineConfig struct {
	// Name of the pipeline; empty means engine-generated.
	Name string `yaml:"name" json:"name"`

	// Elements are created and linked in order.
	Elements []ElementConfig `yaml:"elements" json:"elements"`
}

// ElementConfig describes one element of the chain.
type ElementConfig struct {
	// Factory is the element type name, e.g. "audiotestsrc".
	Factory string `yaml:"factory" json:"factory"`

	// Name is the instance name; empty means engine-generated.
	Name string `yaml:"name" json:"name"`

	// Properties to set after creation.
	Properties map[string]interface{} `yaml:"properties" json:"properties"`
}

// MonitorConfig configures the HTTP debug surface.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging:      DefaultLoggingConfig(),
		Pipeline:     &PipelineConfig{},
		Monitor:      DefaultMonitorConfig(),
		StateTimeout: 10 * time.Second,
	}
}

// DefaultMonitorConfig returns the default monitor configuration; the
// surface is off unless asked for.
func DefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Enabled: false,
		Host:    "127.0.0.1",
		Port:    9090,
	}
}

// LoadFromFile loads a yaml configuration file over the defaults.
func LoadFromFile(filename string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate validates all configuration modules.
func (c *Config) Validate() error {
	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return fmt.Errorf("invalid logging config: %w", err)
		}
	}
	if c.Pipeline != nil {
		if err := c.Pipeline.Validate(); err != nil {
			return fmt.Errorf("invalid pipeline config: %w", err)
		}
	}
	if c.Monitor != nil {
		if err := c.Monitor.Validate(); err != nil {
			return fmt.Errorf("invalid monitor config: %w", err)
		}
	}
	if c.StateTimeout <= 0 {
		return fmt.Errorf("state_timeout must be positive, got %v", c.StateTimeout)
	}
	return nil
}

// Validate checks the element chain.
func (p *PipelineConfig) Validate() error {
	for i, elem := range p.Elements {
		if elem.Factory == "" {
			return fmt.Errorf("element %d has no factory name", i)
		}
	}
	return nil
}

// Validate checks the monitor address.
func (m *MonitorConfig) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Port <= 0 || m.Port > 65535 {
		return fmt.Errorf("invalid monitor port: %d", m.Port)
	}
	if m.Host == "" {
		return fmt.Errorf("monitor host must not be empty")
	}
	return nil
}

// Addr returns the listen address of the monitor surface.
func (m *MonitorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}
