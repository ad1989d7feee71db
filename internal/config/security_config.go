package config

import "time"

type SecurityConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetMaxSessionAge() time.Duration
	GetAuthFetchTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (Security) GetRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour
}

func (Security) GetMaxSessionAge() time.Duration {
	return 30 * 24 * time.Hour
}

// GetAuthFetchTimeout bounds the auth observer's initial session fetch. On
// timeout the UI settles on "not authenticated" rather than hang.
func (Security) GetAuthFetchTimeout() time.Duration {
	return 8 * time.Second
}
