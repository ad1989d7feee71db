package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harubang/fengshui-site/internal/config"
)

func TestParseEnv_Defaults(t *testing.T) {
	vars, err := config.ParseEnv()
	require.NoError(t, err)

	require.Equal(t, ":8080", vars.GetPort())
	require.Equal(t, "Harubang Feng Shui", vars.GetAppName())
	require.Equal(t, "http://localhost:8080", vars.GetBaseURL())
	require.Equal(t, "DEV", vars.GetEnv())
	require.Equal(t, "./data/site.db", vars.GetDatabasePath())
	require.Equal(t, "https://accounts.google.com", vars.GetOAuthIssuer())
}

func TestParseEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "PROD")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "http://localhost:54321")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "anon-key")

	vars, err := config.ParseEnv()
	require.NoError(t, err)

	require.Equal(t, ":9000", vars.GetPort())
	require.Equal(t, "PROD", vars.GetEnv())
	require.Equal(t, "http://localhost:54321", vars.GetServiceURL())
	require.Equal(t, "anon-key", vars.GetAnonKey())
}

func TestGetPort_PreservesLeadingColon(t *testing.T) {
	vars := config.EnvVars{Port: ":3000"}
	require.Equal(t, ":3000", vars.GetPort())
}

func TestGetSessionSecret_ExplicitSecretWins(t *testing.T) {
	vars := config.EnvVars{SessionSecret: "explicit", AnonKey: "anon-key"}
	require.Equal(t, []byte("explicit"), vars.GetSessionSecret())
}

func TestGetSessionSecret_DerivedFromAnonKey(t *testing.T) {
	vars := config.EnvVars{AnonKey: "anon-key"}

	derived := vars.GetSessionSecret()
	require.Len(t, derived, 32)
	require.Equal(t, derived, vars.GetSessionSecret())

	other := config.EnvVars{AnonKey: "different-key"}
	require.NotEqual(t, derived, other.GetSessionSecret())
}

func TestGetSessionSecret_NothingConfigured(t *testing.T) {
	require.Nil(t, config.EnvVars{}.GetSessionSecret())
}

func TestAllowedOrigins(t *testing.T) {
	cors := config.NewCors("http://localhost:3000, https://harubang.example ,,")

	origins := cors.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://localhost:3000"))
	require.True(t, origins.IsAllowedOrigin("https://harubang.example"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example"))
	require.False(t, origins.IsAllowedOrigin(""))
}
