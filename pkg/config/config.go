// Package config loads server configuration from an optional YAML file
// with environment variable overrides. Environment wins over file, file
// wins over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/infragraph/pkg/validation"
)

// LLMConfig configures the natural-language intent classifier. The
// endpoint is any OpenAI-compatible chat completion API.
type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Config is the full server configuration.
type Config struct {
	// DataDir holds the YAML files the connectors ingest.
	DataDir string `yaml:"data_dir"`

	// Host and Port are the HTTP listen address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// QuietPeriod is how long the data directory must stay quiet before
	// a change triggers re-ingestion.
	QuietPeriod time.Duration `yaml:"quiet_period"`

	// IngestAttempts and IngestBackoff control the startup ingestion
	// retry loop.
	IngestAttempts int           `yaml:"ingest_attempts"`
	IngestBackoff  time.Duration `yaml:"ingest_backoff"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	LLM LLMConfig `yaml:"llm"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		DataDir:         "./data",
		Host:            "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		QuietPeriod:     1500 * time.Millisecond,
		IngestAttempts:  3,
		IngestBackoff:   2 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
	}
}

// Load reads configuration, layering the YAML file at path (skipped when
// path is empty or the file does not exist) and INFRAGRAPH_* environment
// variables over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; fall through to env.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.DataDir, "INFRAGRAPH_DATA_DIR")
	setString(&c.Host, "INFRAGRAPH_HOST")
	setString(&c.LogLevel, "INFRAGRAPH_LOG_LEVEL")
	setString(&c.LLM.BaseURL, "INFRAGRAPH_LLM_BASE_URL")
	setString(&c.LLM.APIKey, "INFRAGRAPH_LLM_API_KEY")
	setString(&c.LLM.Model, "INFRAGRAPH_LLM_MODEL")

	// GROQ_API_KEY is honored for drop-in compatibility with existing
	// deployments; the INFRAGRAPH_ variable wins.
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if v := os.Getenv("INFRAGRAPH_LLM_ENABLED"); v != "" {
		c.LLM.Enabled = v == "true" || v == "1"
	}

	if err := setInt(&c.Port, "INFRAGRAPH_PORT"); err != nil {
		return err
	}
	if err := setDuration(&c.QuietPeriod, "INFRAGRAPH_QUIET_PERIOD"); err != nil {
		return err
	}
	return setDuration(&c.ShutdownTimeout, "INFRAGRAPH_SHUTDOWN_TIMEOUT")
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("DataDir", c.DataDir).
		RangeInt("Port", c.Port, 1, 65535).
		OneOf("LogLevel", c.LogLevel, []string{"debug", "info", "warn", "error"}).
		MinDuration("QuietPeriod", c.QuietPeriod, 100*time.Millisecond).
		Positive("IngestAttempts", c.IngestAttempts).
		When(c.LLM.Enabled, func(cv *validation.ConfigValidator) {
			cv.Required("LLM.APIKey", c.LLM.APIKey).
				Required("LLM.BaseURL", c.LLM.BaseURL).
				Required("LLM.Model", c.LLM.Model)
		}).
		Validate()
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
