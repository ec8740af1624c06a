// Package config loads the relay configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. SMTP settings have no defaults and are not checked
// for presence; a missing host or credential fails when a message is sent.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/contact-relay/internal/audit"
	"github.com/Zachkp/contact-relay/internal/logger"
	"github.com/Zachkp/contact-relay/internal/mailer"
)

// ServerConfig configures the HTTP listener and static site.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	SiteDir         string        `yaml:"site_dir"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadyTimeout    time.Duration `yaml:"ready_timeout"`
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// Config is the complete relay configuration.
type Config struct {
	Server ServerConfig      `yaml:"server"`
	SMTP   mailer.SMTPConfig `yaml:"smtp"`
	Audit  audit.Config      `yaml:"audit"`
	Log    logger.Config     `yaml:"log"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 10 * time.Second,
			ReadyTimeout:    3 * time.Second,
		},
		Audit: audit.Config{
			Retention: audit.DefaultRetention,
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := mergo.Merge(&cfg, fromEnv(), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: apply environment: %w", err)
	}
	if err := applyEnvValues(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// fromEnv reads the environment into a sparse Config; unset variables stay zero
// so they do not override file values. Numbers and booleans are applied by
// applyEnvValues because mergo never overrides with a zero value.
func fromEnv() Config {
	var cfg Config

	cfg.Server.Port = os.Getenv("PORT")
	cfg.Server.SiteDir = os.Getenv("SITE_DIR")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.User = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")

	cfg.Audit.DBPath = os.Getenv("AUDIT_DB_PATH")
	cfg.Audit.Salt = os.Getenv("AUDIT_SALT")

	cfg.Log.Level = os.Getenv("LOG_LEVEL")

	return cfg
}

// applyEnvValues sets every variable that is present, including 0 and false,
// directly on cfg.
func applyEnvValues(cfg *Config) error {
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("config: SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = p
	}
	if timeout := os.Getenv("SMTP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("config: SMTP_TIMEOUT: %w", err)
		}
		cfg.SMTP.Timeout = d
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		b, err := strconv.ParseBool(dev)
		if err != nil {
			return fmt.Errorf("config: LOG_DEVELOPMENT: %w", err)
		}
		cfg.Log.Development = b
	}
	return nil
}
