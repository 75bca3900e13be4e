package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Engine    EngineConfig    `yaml:"engine"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// EngineConfig tunes conflict evaluation. OverridePolicy is "session_supersedes"
// (a generated session replaces its template on its date) or "check_both".
type EngineConfig struct {
	OverridePolicy string `yaml:"override_policy"`
}

// TailscaleConfig enables serving over a tailnet instead of a plain TCP
// listener.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix SLOTCHECK_ and underscore-separated paths:
//
//	SLOTCHECK_SERVER_HOST, SLOTCHECK_SERVER_PORT,
//	SLOTCHECK_DB_HOST, SLOTCHECK_DB_PORT, SLOTCHECK_DB_NAME,
//	SLOTCHECK_DB_USER, SLOTCHECK_DB_PASSWORD, SLOTCHECK_DB_SSLMODE,
//	SLOTCHECK_AUTH_API_KEY, SLOTCHECK_ENGINE_OVERRIDE_POLICY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SLOTCHECK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SLOTCHECK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SLOTCHECK_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("SLOTCHECK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("SLOTCHECK_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("SLOTCHECK_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("SLOTCHECK_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SLOTCHECK_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("SLOTCHECK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("SLOTCHECK_ENGINE_OVERRIDE_POLICY"); v != "" {
		cfg.Engine.OverridePolicy = v
	}
	if v := os.Getenv("SLOTCHECK_TAILSCALE_ENABLED"); v != "" {
		cfg.Tailscale.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SLOTCHECK_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("SLOTCHECK_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Engine.OverridePolicy {
	case "", "session_supersedes", "check_both":
	default:
		return fmt.Errorf("engine.override_policy must be session_supersedes or check_both, got %q", c.Engine.OverridePolicy)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
