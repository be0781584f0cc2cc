// Package config loads portal settings from the environment (optionally via a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Host      string `env:"PORTAL_HOST" envDefault:"0.0.0.0"`
	Port      int    `env:"PORTAL_PORT" envDefault:"3000"`
	Env       string `env:"PORTAL_ENV" envDefault:"development"`
	DataDir   string `env:"PORTAL_DATA_DIR" envDefault:"data"`
	AssetsDir string `env:"PORTAL_ASSETS_DIR" envDefault:"public"`
	StaticDir string `env:"PORTAL_STATIC_DIR"`
	Seed      bool   `env:"PORTAL_SEED" envDefault:"true"`

	LogLevel  string `env:"PORTAL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PORTAL_LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"PORTAL_LOG_FILE"`

	JWTSecret          string        `env:"PORTAL_JWT_SECRET"`
	TokenTTL           time.Duration `env:"PORTAL_TOKEN_TTL" envDefault:"12h"`
	EnforceAdminToken  bool          `env:"PORTAL_ENFORCE_ADMIN_TOKEN" envDefault:"false"`
	LoginRatePerSecond float64       `env:"PORTAL_LOGIN_RATE" envDefault:"1"`
	LoginBurst         int           `env:"PORTAL_LOGIN_BURST" envDefault:"10"`
	TrustProxy         bool          `env:"PORTAL_TRUST_PROXY" envDefault:"false"`

	TLSCertFile string `env:"PORTAL_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"PORTAL_TLS_KEY_FILE"`

	ShutdownTimeout time.Duration `env:"PORTAL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr returns host:port.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether PORTAL_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORTAL_PORT out of range: %d", cfg.Port)
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("PORTAL_JWT_SECRET must be at least 16 bytes")
	}
	return cfg, nil
}

// ClientConfig holds the CLI settings; flags override these values.
type ClientConfig struct {
	Server         string        `env:"PORTAL_SERVER" envDefault:"http://localhost:3000"`
	DataDir        string        `env:"PORTAL_CLIENT_DIR"`
	ProbeTimeout   time.Duration `env:"PORTAL_PROBE_TIMEOUT" envDefault:"3s"`
	RequestTimeout time.Duration `env:"PORTAL_REQUEST_TIMEOUT" envDefault:"10s"`
	LogLevel       string        `env:"PORTAL_CLIENT_LOG_LEVEL" envDefault:"error"`
}

// LoadClient reads an optional .env file and then parses the client environment.
func LoadClient() (*ClientConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	return cfg, nil
}
