// Package config loads the dashboard server configuration from an optional
// YAML file, then applies environment variable overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
	// StaticPath is the directory holding the built frontend.
	StaticPath string `yaml:"static_path"`
	// DBPath is the SQLite file holding the local session state.
	DBPath string `yaml:"db_path"`

	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Wizards  WizardConfig   `yaml:"wizards"`
	Login    LoginConfig    `yaml:"login"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Frontend FrontendConfig `yaml:"frontend"`
}

// BackendConfig locates the GraphQL backend.
type BackendConfig struct {
	// URL is the backend base URL; documents are posted to URL + "/graphql".
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// GraphQLEndpoint returns the GraphQL endpoint URL.
func (b BackendConfig) GraphQLEndpoint() string {
	return strings.TrimRight(b.URL, "/") + "/graphql"
}

// SessionConfig tunes the session controller.
type SessionConfig struct {
	// TokenLeeway treats access tokens this close to expiry as expired.
	TokenLeeway time.Duration `yaml:"token_leeway"`
	// RefetchSchedule is a cron spec for refreshing the user snapshot.
	// Empty disables it.
	RefetchSchedule string `yaml:"refetch_schedule"`
}

// WizardConfig tunes hosted wizard instances.
type WizardConfig struct {
	// IdleTTL closes instances the browser stopped talking to.
	IdleTTL time.Duration `yaml:"idle_ttl"`
	// SweepSchedule is the cron spec of the idle sweep.
	SweepSchedule string `yaml:"sweep_schedule"`
	// SignupCompanyID is the company public client signups register with.
	SignupCompanyID string `yaml:"signup_company_id"`
}

// LoginConfig throttles sign-in attempts.
type LoginConfig struct {
	PerMinute float64 `yaml:"per_minute"`
	Burst     int     `yaml:"burst"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is "text" (colored) or "json".
	Format string `yaml:"format"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FrontendConfig lists origins allowed to call the RPC surface from another
// host during frontend development.
type FrontendConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		StaticPath: "../frontend/dist",
		DBPath:     "./data/dashboard.db",
		Backend: BackendConfig{
			URL:     "http://localhost:4000",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			TokenLeeway:     30 * time.Second,
			RefetchSchedule: "@every 15m",
		},
		Wizards: WizardConfig{
			IdleTTL:       30 * time.Minute,
			SweepSchedule: "@every 5m",
		},
		Login: LoginConfig{
			PerMinute: 10,
			Burst:     5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path (if not empty) over the defaults, then applies the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("LISTEN_ADDR", c.Addr)
	c.StaticPath = getEnv("STATIC_PATH", c.StaticPath)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.Backend.URL = getEnv("BACKEND_API_URL", c.Backend.URL)
	c.Session.RefetchSchedule = getEnv("SESSION_REFETCH_SCHEDULE", c.Session.RefetchSchedule)
	c.Wizards.SweepSchedule = getEnv("WIZARD_SWEEP_SCHEDULE", c.Wizards.SweepSchedule)
	c.Wizards.SignupCompanyID = getEnv("SIGNUP_COMPANY_ID", c.Wizards.SignupCompanyID)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Frontend.AllowedOrigins = strings.Split(v, ",")
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"GRAPHQL_TIMEOUT", &c.Backend.Timeout},
		{"TOKEN_LEEWAY", &c.Session.TokenLeeway},
		{"WIZARD_IDLE_TTL", &c.Wizards.IdleTTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			if *d.dst, err = time.ParseDuration(v); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, d.key, err)
			}
		}
	}
	if v := os.Getenv("LOGIN_RATE_PER_MINUTE"); v != "" {
		if c.Login.PerMinute, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("%w: LOGIN_RATE_PER_MINUTE: %v", ErrInvalid, err)
		}
	}
	if v := os.Getenv("LOGIN_BURST"); v != "" {
		if c.Login.Burst, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: LOGIN_BURST: %v", ErrInvalid, err)
		}
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if c.Metrics.Enabled, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%w: METRICS_ENABLED: %v", ErrInvalid, err)
		}
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q is not an http(s) URL", c.Backend.URL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Wizards.IdleTTL <= 0 {
		errs = append(errs, errors.New("wizards.idle_ttl must be positive"))
	}
	if c.Wizards.SweepSchedule == "" {
		errs = append(errs, errors.New("wizards.sweep_schedule is required"))
	}
	if c.Login.PerMinute <= 0 || c.Login.Burst <= 0 {
		errs = append(errs, errors.New("login.per_minute and login.burst must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
