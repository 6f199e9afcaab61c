package auth

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-provided settings the auth core and its demo
// server need.
type Config struct {
	SessionSecret      string `env:"SESSION_SECRET,required"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	HostURL            string `env:"HOST_URL" envDefault:"http://localhost:8080"`
	SupportEmail       string `env:"SUPPORT_EMAIL" envDefault:"support@notekeep.app"`
	ResendAPIKey       string `env:"RESEND_API_KEY"`
	Environment        string `env:"ENVIRONMENT" envDefault:"development"`
	Port               int    `env:"PORT" envDefault:"8080"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Production reports whether cookies should be marked Secure.
func (c *Config) Production() bool { return c.Environment == "production" }
