// Package config loads sheetview settings from the environment, an optional
// .env file and an optional YAML file of render defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/ukaji3/sheetview-go/pkg/sheetview/numfmt"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Document source: a local directory or a document server.
	Dir      string
	Pattern  string
	URL      string
	Token    string
	Timeout  time.Duration
	Capacity int

	ConfigPath string // YAML file with render defaults
	Render     Render
}

// Render holds the default render options. Pointer fields are unset when
// neither the environment nor the YAML file configures them.
type Render struct {
	Mode          string `yaml:"mode"`
	ByRef         bool   `yaml:"by_ref"`
	IgnoreStyles  bool   `yaml:"ignore_styles"`
	RootID        string `yaml:"root_id"`
	AdditionalCSS string `yaml:"additional_css"`
	Locale        string `yaml:"locale"`
	Calculate     *bool  `yaml:"calculate"`
	Format        *bool  `yaml:"format"`
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the configuration without validating it, so callers can
// apply overrides first.
func FromEnv() (*Config, error) {
	// A missing .env file is fine outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("SHEETVIEW_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Dir:        os.Getenv("SHEETVIEW_DIR"),
		Pattern:    getEnv("SHEETVIEW_PATTERN", "%d.xlsx"),
		URL:        os.Getenv("SHEETVIEW_URL"),
		Token:      os.Getenv("SHEETVIEW_TOKEN"),
		ConfigPath: os.Getenv("SHEETVIEW_CONFIG"),
		Render: Render{
			Mode:   getEnv("SHEETVIEW_MODE", "all"),
			Locale: os.Getenv("SHEETVIEW_LOCALE"),
			RootID: os.Getenv("SHEETVIEW_ROOT_ID"),
		},
	}

	var err error
	if cfg.Capacity, err = getEnvInt("SHEETVIEW_CAPACITY", 16); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = getEnvSeconds("SHEETVIEW_TIMEOUT_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = getEnvSeconds("SHEETVIEW_READ_TIMEOUT_SECONDS", 15); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getEnvSeconds("SHEETVIEW_WRITE_TIMEOUT_SECONDS", 60); err != nil {
		return nil, err
	}

	if cfg.ConfigPath != "" {
		if err := cfg.readRenderFile(cfg.ConfigPath); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// readRenderFile overlays the YAML render defaults on c.Render. Keys
// missing from the file keep their current values.
func (c *Config) readRenderFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var file struct {
		Render Render `yaml:"render"`
	}
	file.Render = c.Render
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Render = file.Render
	return nil
}

// Validate checks that a document source is configured and the render
// defaults are known values.
func (c *Config) Validate() error {
	if c.Dir == "" && c.URL == "" {
		return fmt.Errorf("SHEETVIEW_DIR or SHEETVIEW_URL is required")
	}
	if c.URL != "" && c.Token == "" {
		return fmt.Errorf("SHEETVIEW_TOKEN is required with SHEETVIEW_URL")
	}
	switch c.Render.Mode {
	case "", "head", "body", "all":
	default:
		return fmt.Errorf("invalid mode: %s (must be head, body, or all)", c.Render.Mode)
	}
	if _, err := numfmt.ParseLocale(c.Render.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Render.Locale, err)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Capacity < 1 {
		return fmt.Errorf("SHEETVIEW_CAPACITY must be positive, got %d", c.Capacity)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvSeconds(key string, fallback int) (time.Duration, error) {
	n, err := getEnvInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
