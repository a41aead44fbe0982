package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
	VBT       VBTConfig       `yaml:"vbt"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// WebDir, when set, is served at / as a static frontend.
	WebDir string `yaml:"web_dir"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	MigrationsPath string `yaml:"migrations_path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// CoachConfig points at the remote AI coaching functions. An empty BaseURL
// disables them.
type CoachConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout for coach calls.
func (c CoachConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Velocity sources.
const (
	SourceSimulated = "simulated"
	SourceReplay    = "replay"
)

// VBTConfig selects where live velocity readings come from.
type VBTConfig struct {
	Source string    `yaml:"source"`
	Seed   int64     `yaml:"seed"`
	Replay []float64 `yaml:"replay"`
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
// Env vars use the prefix VBTCOACH_ and underscore-separated paths:
//
//	VBTCOACH_SERVER_HOST, VBTCOACH_SERVER_PORT, VBTCOACH_SERVER_WEB_DIR,
//	VBTCOACH_DB_HOST, VBTCOACH_DB_PORT, VBTCOACH_DB_NAME,
//	VBTCOACH_DB_USER, VBTCOACH_DB_PASSWORD, VBTCOACH_DB_SSLMODE,
//	VBTCOACH_AUTH_API_KEY,
//	VBTCOACH_TS_ENABLED, VBTCOACH_TS_HOSTNAME, VBTCOACH_TS_STATE_DIR,
//	VBTCOACH_COACH_BASE_URL, VBTCOACH_COACH_API_KEY,
//	VBTCOACH_VBT_SOURCE, VBTCOACH_VBT_SEED
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
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("VBTCOACH_SERVER_HOST", &cfg.Server.Host)
	setInt("VBTCOACH_SERVER_PORT", &cfg.Server.Port)
	setString("VBTCOACH_SERVER_WEB_DIR", &cfg.Server.WebDir)
	setString("VBTCOACH_DB_HOST", &cfg.Database.Host)
	setInt("VBTCOACH_DB_PORT", &cfg.Database.Port)
	setString("VBTCOACH_DB_NAME", &cfg.Database.Name)
	setString("VBTCOACH_DB_USER", &cfg.Database.User)
	setString("VBTCOACH_DB_PASSWORD", &cfg.Database.Password)
	setString("VBTCOACH_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("VBTCOACH_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := os.Getenv("VBTCOACH_TS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString("VBTCOACH_TS_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("VBTCOACH_TS_STATE_DIR", &cfg.Tailscale.StateDir)
	setString("VBTCOACH_COACH_BASE_URL", &cfg.Coach.BaseURL)
	setString("VBTCOACH_COACH_API_KEY", &cfg.Coach.APIKey)
	setString("VBTCOACH_VBT_SOURCE", &cfg.VBT.Source)
	if v := os.Getenv("VBTCOACH_VBT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.VBT.Seed = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "vbtcoach"
	}
	if cfg.Coach.TimeoutSeconds == 0 {
		cfg.Coach.TimeoutSeconds = 30
	}
	if cfg.VBT.Source == "" {
		cfg.VBT.Source = SourceSimulated
	}
	if cfg.VBT.Seed == 0 {
		cfg.VBT.Seed = time.Now().UnixNano()
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
	if c.Coach.TimeoutSeconds < 0 {
		return fmt.Errorf("coach.timeout_seconds must not be negative")
	}
	switch c.VBT.Source {
	case SourceSimulated:
	case SourceReplay:
		if len(c.VBT.Replay) == 0 {
			return fmt.Errorf("vbt.replay needs at least one reading when vbt.source is %q", SourceReplay)
		}
		for i, v := range c.VBT.Replay {
			if v < 0 {
				return fmt.Errorf("vbt.replay[%d] = %v: velocity must not be negative", i, v)
			}
		}
	default:
		return fmt.Errorf("vbt.source must be %q or %q, got %q", SourceSimulated, SourceReplay, c.VBT.Source)
	}
	return nil
}
