package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"milpress"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"milpress"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"milpress"`

	// Identity provider (auth backend)
	AuthURL            string `env:"AUTH_URL"`
	AuthServiceRoleKey string `env:"AUTH_SERVICE_ROLE_KEY"`
	AuthAnonKey        string `env:"AUTH_ANON_KEY"`

	// Transactional mail (optional; first configured provider wins)
	ResendAPIKey   string `env:"RESEND_API_KEY"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"no-reply@example.com"`
	AppName        string `env:"APP_NAME" envDefault:"Milpress"`
	AppLoginURL    string `env:"APP_LOGIN_URL"`

	// Server
	APIPort            int    `env:"API_PORT" envDefault:"8080"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	MigrateOnStart     bool   `env:"MIGRATE_ON_START" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// RequireIdentity reports missing identity-provider settings. Requests that
// need the provider fail with a configuration error while this returns non-nil.
func (c *Config) RequireIdentity() error {
	if c.AuthURL == "" || c.AuthServiceRoleKey == "" || c.AuthAnonKey == "" {
		return fmt.Errorf("Missing env vars (AUTH_URL, AUTH_SERVICE_ROLE_KEY, AUTH_ANON_KEY)")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// LoginURL is the address included in account emails, falling back to the
// identity provider's base URL when no explicit login page is configured.
func (c *Config) LoginURL() string {
	if c.AppLoginURL != "" {
		return c.AppLoginURL
	}
	return c.AuthURL
}
