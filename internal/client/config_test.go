package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfigMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)

	// A name is the only thing the defaults cannot supply
	assert.EqualError(t, cfg.Validate(), "player name is required")
	cfg.Player.Name = "alice"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "alice", cfg.PlayerID())
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout())
}

func TestLoadClientConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "https://uno.example.com"
}

player {
  id   = "42"
  name = "Alice"
}

ui {
  channel   = "general"
  log_level = "debug"
}
`), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://uno.example.com", cfg.Server.URL)
	assert.Equal(t, 10, cfg.Server.ConnectTimeout)
	assert.Equal(t, "42", cfg.PlayerID())
	assert.Equal(t, "general", cfg.UI.Channel)
	assert.Equal(t, "unobot-client.log", cfg.UI.LogFile)
}

func TestClientConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ClientConfig)
		want   string
	}{
		{"no url", func(c *ClientConfig) { c.Server.URL = "" }, "server URL is required"},
		{"bad timeout", func(c *ClientConfig) { c.Server.ConnectTimeout = -1 }, "connect timeout must be positive"},
		{"no channel", func(c *ClientConfig) { c.UI.Channel = "" }, "channel is required"},
		{"bad level", func(c *ClientConfig) { c.UI.LogLevel = "loud" }, "invalid log level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			cfg.Player.Name = "alice"
			tt.mutate(cfg)
			assert.EqualError(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadClientConfigInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server {`), 0o600))

	_, err := LoadClientConfig(path)
	assert.ErrorContains(t, err, "failed to parse HCL file")
}
