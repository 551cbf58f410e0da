package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal("release", cfg.Mode)
	req.Equal("./public", cfg.StaticPath)
	req.Equal(int64(64*1024*1024), cfg.Recording.MaxBufferBytes)
	req.Equal(4, cfg.Dispatch.Workers)
	req.Positive(cfg.Dispatch.TaskTimeout)
	req.Positive(cfg.Recording.ReconnectGrace)
}

func TestLoad_PortFromEnvironment(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "nonexistent")
	t.Setenv("PORT", "9100")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(9100, cfg.Port)
}

func TestLoad_InvalidPortFailsAtStartup(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("zero", func(t *testing.T) {
		t.Setenv("PORT", "0")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := Load()
		require.Error(t, err)
	})
}
