package config

import (
	"os"
	"regexp"
	"time"

	"github.com/amoylab/mockmcp/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// MockServerConfig represents the full mock server configuration
	MockServerConfig struct {
		Port    int           `yaml:"port"`
		Logger  LoggerConfig  `yaml:"logger"`
		SSE     SSEConfig     `yaml:"sse"`
		Session SessionConfig `yaml:"session"`
		Tools   ToolsConfig   `yaml:"tools"`
		Metrics MetricsConfig `yaml:"metrics"`
	}

	// SSEConfig tunes the legacy SSE transport
	SSEConfig struct {
		// KeepAliveInterval is how long an idle session waits for an inbound
		// message before emitting a keep-alive comment. A liveness knob only.
		KeepAliveInterval time.Duration `yaml:"keep_alive_interval"`
	}

	// SessionConfig represents the session registry configuration
	SessionConfig struct {
		// QueueSize is the capacity of each session's inbound message queue
		QueueSize int `yaml:"queue_size"`
	}

	// ToolsConfig tunes the reference tool handlers
	ToolsConfig struct {
		// SearchStepDelay is the wall-clock pause per search_with_progress step
		SearchStepDelay time.Duration `yaml:"search_step_delay"`
	}

	// MetricsConfig represents the Prometheus metrics configuration
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}
)

// LoadConfig loads configuration from a YAML file with environment variable
// support. Placeholders of the form ${ENV_KEY} or ${ENV_KEY:default} are
// resolved before unmarshalling.
func LoadConfig(filename string) (*MockServerConfig, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	var cfg MockServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	cfg.setDefaults()
	return &cfg, cfgPath, nil
}

// Default returns a configuration with all defaults applied, used when no
// configuration file is given.
func Default() *MockServerConfig {
	cfg := &MockServerConfig{}
	cfg.setDefaults()
	return cfg
}

func (c *MockServerConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.SSE.KeepAliveInterval <= 0 {
		c.SSE.KeepAliveInterval = 30 * time.Second
	}
	if c.Session.QueueSize <= 0 {
		c.Session.QueueSize = 16
	}
	if c.Tools.SearchStepDelay <= 0 {
		c.Tools.SearchStepDelay = time.Second
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "mockmcp"
	}
}

func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
