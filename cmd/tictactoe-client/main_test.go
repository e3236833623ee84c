package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  host = "from-file:8080"
}
ui {
  log_level = "info"
}
`), 0o600))

	t.Run("file values", func(t *testing.T) {
		cli := CLI{Config: path}
		cfg, err := cli.loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-file:8080", cfg.Server.Host)
		assert.Equal(t, "info", cfg.UI.LogLevel)
		assert.True(t, cfg.UI.Color)
	})

	t.Run("flags win", func(t *testing.T) {
		cli := CLI{
			Config:        path,
			Host:          "from-flag:9000",
			Secure:        true,
			LogLevel:      "debug",
			LogFile:       filepath.Join(dir, "out.log"),
			NoColor:       true,
			NoMouse:       true,
			IndexAsString: true,
		}
		cfg, err := cli.loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-flag:9000", cfg.Server.Host)
		assert.True(t, cfg.Server.Secure)
		assert.Equal(t, "debug", cfg.UI.LogLevel)
		assert.Equal(t, filepath.Join(dir, "out.log"), cfg.UI.LogFile)
		assert.False(t, cfg.UI.Color)
		assert.False(t, cfg.UI.Mouse)
		assert.True(t, cfg.Protocol.IndexAsString)
	})

	t.Run("invalid override", func(t *testing.T) {
		cli := CLI{Config: path, LogLevel: "loud"}
		_, err := cli.loadConfig()
		assert.Error(t, err)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cli := CLI{Config: filepath.Join(dir, "missing.hcl")}
		cfg, err := cli.loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", cfg.Server.Host)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, log.InfoLevel, newLogger(&buf, "bogus").GetLevel())
}
