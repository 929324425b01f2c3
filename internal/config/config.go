// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; store DSNs with credentials go to
// the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/xdg"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "MENAGERIE_LOG_LEVEL"
	EnvStoreDSN = "MENAGERIE_STORE_DSN"
	EnvPort     = "PORT"
)

const (
	defaultLogLevel = "info"
	defaultTimeout  = 10 * time.Second
	defaultAddr     = ":8080"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel  string                    `json:"log_level"`
	Timeout   string                    `json:"timeout"`
	Resources map[string]ResourceConfig `json:"resources"`
	Store     StoreConfig               `json:"store"`
}

// ResourceConfig locates the collection service for one resource kind.
type ResourceConfig struct {
	BaseURL string `json:"base_url"`
}

// StoreConfig holds settings of the reference collection service.
type StoreConfig struct {
	// DSN is only kept here when it carries no password.
	DSN  string `json:"dsn,omitempty"`
	Addr string `json:"addr,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	c := Config{
		LogLevel:  defaultLogLevel,
		Timeout:   defaultTimeout.String(),
		Resources: map[string]ResourceConfig{},
	}
	for _, r := range catalog.All() {
		c.Resources[r.Key] = ResourceConfig{BaseURL: r.DefaultBaseURL}
	}
	return c
}

// EnvURL returns the environment variable overriding a resource's base URL.
func EnvURL(key string) string {
	return "MENAGERIE_" + strings.ToUpper(key) + "_URL"
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from the default path; a missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p. Settings missing from the file keep
// their defaults and environment variables take precedence over both.
func LoadFrom(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		var fromFile Config
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
		c.merge(fromFile)
	}
	c.applyEnv()
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return c, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return c, nil
}

func (c *Config) merge(o Config) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Timeout != "" {
		c.Timeout = o.Timeout
	}
	for k, r := range o.Resources {
		if r.BaseURL != "" {
			c.Resources[k] = r
		}
	}
	if o.Store.DSN != "" {
		c.Store.DSN = o.Store.DSN
	}
	if o.Store.Addr != "" {
		c.Store.Addr = o.Store.Addr
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	for k := range c.Resources {
		if v := os.Getenv(EnvURL(k)); v != "" {
			c.Resources[k] = ResourceConfig{BaseURL: v}
		}
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		c.Store.Addr = ":" + v
	}
}

// BaseURL returns the collection service base URL for a resource kind.
func (c Config) BaseURL(key string) string {
	if r, ok := c.Resources[key]; ok && r.BaseURL != "" {
		return r.BaseURL
	}
	if res, err := catalog.Lookup(key); err == nil {
		return res.DefaultBaseURL
	}
	return ""
}

// RequestTimeout returns the per-request timeout.
func (c Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// ServeAddr returns the listen address of the collection service.
func (c Config) ServeAddr() string {
	if c.Store.Addr != "" {
		return c.Store.Addr
	}
	return defaultAddr
}

// Save writes configuration to the default path.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given). Missing files are skipped and variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
