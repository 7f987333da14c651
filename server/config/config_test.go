package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults without a config file", func(t *testing.T) {
		req := require.New(t)

		cfg, err := Load(t.TempDir())
		req.NoError(err)

		req.Equal("0.0.0.0:3000", cfg.Server.HTTPAddr())
		req.Equal("0.0.0.0:50051", cfg.Server.GRPCAddr())
		req.Equal(100, cfg.Presence.Capacity)
		req.Equal(time.Hour, cfg.Presence.TTL)
		req.Equal(64, cfg.Stream.BufferSize)
		req.Equal(time.Hour, cfg.Session.MaxAge)
		req.Equal("__session", cfg.Session.CookieName)
		req.Equal("info", cfg.Log.Level)
		req.True(cfg.UsesDefaultSecret())
	})

	t.Run("should honour environment overrides", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("PORT", "8080")
		t.Setenv("GRPC_PORT", "9090")
		t.Setenv("SESSION_SECRET", "s3cret")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("PRESENCE_TTL", "30m")

		cfg, err := Load(t.TempDir())
		req.NoError(err)

		req.Equal(8080, cfg.Server.HTTPPort)
		req.Equal(9090, cfg.Server.GRPCPort)
		req.Equal("s3cret", cfg.Session.Secret)
		req.Equal("debug", cfg.Log.Level)
		req.Equal(30*time.Minute, cfg.Presence.TTL)
		req.False(cfg.UsesDefaultSecret())
	})

	t.Run("should read a config file", func(t *testing.T) {
		req := require.New(t)
		dir := t.TempDir()
		yaml := "presence:\n  capacity: 10\nstream:\n  buffer_size: 4\nlog:\n  pretty: true\n"
		req.NoError(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := Load(dir)
		req.NoError(err)

		req.Equal(10, cfg.Presence.Capacity)
		req.Equal(4, cfg.Stream.BufferSize)
		req.True(cfg.Log.Pretty)
	})

	t.Run("should reject invalid limits", func(t *testing.T) {
		req := require.New(t)
		dir := t.TempDir()
		req.NoError(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("presence:\n  capacity: 0\n"), 0o600))

		_, err := Load(dir)
		req.Error(err)
	})
}
