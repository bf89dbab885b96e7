// Package config loads server configuration from defaults, an optional
// TOML file, and environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
}

// Duration wraps time.Duration so TOML values can be written as "10s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type ServerConfig struct {
	Host  string `toml:"host"`
	Port  string `toml:"port"`
	Store string `toml:"store"`
	Shell string `toml:"shell"`

	// Autosave is the flush interval for open documents.
	Autosave Duration `toml:"autosave"`

	// Secret signs session tokens; Users maps usernames to passwords.
	// Auth is disabled when Users is empty.
	Secret string            `toml:"secret"`
	Users  map[string]string `toml:"users"`
}

// ClientConfig is pushed verbatim to editor clients after connect.
type ClientConfig struct {
	// Macros maps TeX commands to their expansions for math rendering.
	Macros map[string]string `toml:"macros"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     "5000",
			Store:    "store",
			Shell:    "shell",
			Autosave: Duration(10 * time.Second),
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path if
// given, then environment variables on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Server.Host = envOr("SPIRIT_HOST", cfg.Server.Host)
	cfg.Server.Port = envOr("SPIRIT_PORT", cfg.Server.Port)
	cfg.Server.Store = envOr("SPIRIT_STORE", cfg.Server.Store)
	cfg.Server.Shell = envOr("SPIRIT_SHELL", cfg.Server.Shell)
	cfg.Server.Secret = envOr("SPIRIT_SECRET", cfg.Server.Secret)
	cfg.Server.Autosave = Duration(envDuration("SPIRIT_AUTOSAVE", cfg.Server.Autosave.Std()))

	if cfg.Server.Autosave <= 0 {
		cfg.Server.Autosave = Duration(10 * time.Second)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Store == "" {
		return fmt.Errorf("server.store is required")
	}
	if len(c.Server.Users) > 0 && c.Server.Secret == "" {
		return fmt.Errorf("server.secret is required when users are configured")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
