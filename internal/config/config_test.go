package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "data/filme.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "de-DE", cfg.TMDBLanguage)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500", cfg.TMDBImageBaseURL)
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.False(t, cfg.CookieSecure)
}

func TestDecodeEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("INITIAL_USERS", "anna:secret:admin,ben:pw")

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	cfg, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "anna:secret:admin,ben:pw", cfg.InitialUsers)
}
