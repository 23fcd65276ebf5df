package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, OriginDir, cfg.Origin)
	assert.Empty(t, cfg.AssetDir)
	assert.Equal(t, 10*time.Second, cfg.OriginTimeout)
	assert.Equal(t, "/var/lib/weave-edge/stats.db", cfg.StatsDB)
	assert.Equal(t, "hyperweave", cfg.StatsKey)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_ValidOverrides(t *testing.T) {
	t.Setenv("EDGE_ENV", "dev")
	t.Setenv("EDGE_LOG_LEVEL", "debug")
	t.Setenv("EDGE_PORT", "9090")
	t.Setenv("EDGE_ORIGIN", "http")
	t.Setenv("EDGE_ORIGIN_URL", "http://assets.internal:8000")
	t.Setenv("EDGE_ORIGIN_TIMEOUT", "3s")
	t.Setenv("EDGE_STATS_DB", "/tmp/stats.db")
	t.Setenv("EDGE_STATS_KEY", "landing")
	t.Setenv("EDGE_LOCALE", "de-DE")
	t.Setenv("EDGE_SHUTDOWN_TIMEOUT", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, OriginHTTP, cfg.Origin)
	assert.Equal(t, "http://assets.internal:8000", cfg.OriginURL)
	assert.Equal(t, 3*time.Second, cfg.OriginTimeout)
	assert.Equal(t, "/tmp/stats.db", cfg.StatsDB)
	assert.Equal(t, "landing", cfg.StatsKey)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, time.Minute, cfg.ShutdownTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad env", env: map[string]string{"EDGE_ENV": "staging"}},
		{name: "bad log level", env: map[string]string{"EDGE_LOG_LEVEL": "verbose"}},
		{name: "port out of range", env: map[string]string{"EDGE_PORT": "70000"}},
		{name: "unknown origin", env: map[string]string{"EDGE_ORIGIN": "s3"}},
		{name: "http origin without url", env: map[string]string{"EDGE_ORIGIN": "http"}},
		{name: "malformed origin url", env: map[string]string{"EDGE_ORIGIN_URL": "not a url"}},
		{name: "bad locale", env: map[string]string{"EDGE_LOCALE": "not_a-locale!"}},
		{name: "empty stats key", env: map[string]string{"EDGE_STATS_KEY": ""}},
		{name: "non numeric port", env: map[string]string{"EDGE_PORT": "eighty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_LoaderErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("default loader", func(t *testing.T) {
		orig := defaultLoader
		t.Cleanup(func() { defaultLoader = orig })
		defaultLoader = func(*koanf.Koanf) error { return boom }

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "default config")
	})

	t.Run("env loader", func(t *testing.T) {
		orig := envLoader
		t.Cleanup(func() { envLoader = orig })
		envLoader = func(*koanf.Koanf) error { return boom }

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "loading env")
	})

	t.Run("register validation", func(t *testing.T) {
		orig := registerValidation
		t.Cleanup(func() { registerValidation = orig })
		registerValidation = func(*validator.Validate) error { return boom }

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
