package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"main/internal/apperrors"
)

const defaultFrontendBaseURL = "http://localhost:5173"

type Config struct {
	Port            string
	DatabaseURL     string
	FrontendBaseURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
}

// Load reads the environment, optionally seeded from a .env file. Only the
// database URL is required up front; the Google OAuth settings are validated
// lazily by GoogleOAuth so the CRUD surface still works without them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               os.Getenv("PORT"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FrontendBaseURL:    os.Getenv("FRONTEND_BASE_URL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  os.Getenv("GOOGLE_REDIRECT_URI"),
	}

	if cfg.Port == "" {
		cfg.Port = "9999"
	}
	if cfg.FrontendBaseURL == "" {
		cfg.FrontendBaseURL = defaultFrontendBaseURL
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", apperrors.ErrConfiguration)
	}

	return cfg, nil
}

// GoogleOAuth reports the OAuth client settings, or a configuration error
// naming every missing variable.
func (c *Config) GoogleOAuth() (clientID, clientSecret, redirectURI string, err error) {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.GoogleRedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return "", "", "", fmt.Errorf("%w: %s", apperrors.ErrConfiguration, strings.Join(missing, ", "))
	}
	return c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURI, nil
}
