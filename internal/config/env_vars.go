package config

import (
	"crypto/sha256"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvVars holds every environment-sourced setting. The backend URL and anon
// key keep the variable names the hosting platform provisions so the same
// deployment configuration works unchanged.
type EnvVars struct {
	Port         string `env:"PORT" envDefault:"8080"`
	AppName      string `env:"APP_NAME" envDefault:"Harubang Feng Shui"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Environment  string `env:"ENV" envDefault:"DEV"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/site.db"`

	ServiceURL    string `env:"NEXT_PUBLIC_SUPABASE_URL"`
	AnonKey       string `env:"NEXT_PUBLIC_SUPABASE_ANON_KEY"`
	SessionSecret string `env:"SESSION_SECRET"`

	OAuthClientID     string `env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET"`
	OAuthIssuer       string `env:"OAUTH_ISSUER" envDefault:"https://accounts.google.com"`

	AllowedOriginsCSV string `env:"CORS_ALLOWED_ORIGINS"`
}

var _ EnvConfig = EnvVars{}
var _ BackendConfig = EnvVars{}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (EnvVars, error) {
	var vars EnvVars
	if err := env.Parse(&vars); err != nil {
		return EnvVars{}, fmt.Errorf("parse env: %w", err)
	}
	return vars, nil
}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetBaseURL() string {
	return e.BaseURL
}

func (e EnvVars) GetDatabasePath() string {
	return e.DatabasePath
}

func (e EnvVars) GetEnv() string {
	if e.Environment == "" {
		return "DEV"
	}
	return e.Environment
}

func (e EnvVars) GetServiceURL() string {
	return e.ServiceURL
}

func (e EnvVars) GetAnonKey() string {
	return e.AnonKey
}

// GetSessionSecret returns the session token signing key. When no dedicated
// secret is configured, the key is derived from the anon key so a minimal
// deployment still signs consistently across restarts.
func (e EnvVars) GetSessionSecret() []byte {
	if e.SessionSecret != "" {
		return []byte(e.SessionSecret)
	}
	if e.AnonKey == "" {
		return nil
	}
	sum := sha256.Sum256([]byte("session:" + e.AnonKey))
	return sum[:]
}

func (e EnvVars) GetOAuthClientID() string {
	return e.OAuthClientID
}

func (e EnvVars) GetOAuthClientSecret() string {
	return e.OAuthClientSecret
}

func (e EnvVars) GetOAuthIssuer() string {
	return e.OAuthIssuer
}
