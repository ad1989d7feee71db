package config

type Config interface {
	EnvConfig
	BackendConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetDatabasePath() string
	GetEnv() string
}

// BackendConfig exposes everything the backend client factory needs to
// construct a handle. ServiceURL and AnonKey are required; their absence is a
// terminal condition for any code path that needs the backend.
type BackendConfig interface {
	GetServiceURL() string
	GetAnonKey() string
	GetSessionSecret() []byte
	GetOAuthClientID() string
	GetOAuthClientSecret() string
	GetOAuthIssuer() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
}

// New parses configuration from the environment. A parse failure is fatal.
// Missing backend values are not validated here; the client factory records
// them as a terminal construction failure instead.
func New() (Config, error) {
	vars, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: vars,
		Cors:    NewCors(vars.AllowedOriginsCSV),
	}, nil
}
