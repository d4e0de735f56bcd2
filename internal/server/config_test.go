package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/unobot/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unobot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultConfig(), gameCfg)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, []string{"uno"}, cfg.Discord.Prefixes)
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  port      = 9090
  log_level = "debug"
  seed      = 42
}

session {
  max_players   = 4
  queue_timeout = "90s"
}

rules {
  enabled = ["seven_o", "jump_in"]
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(42), cfg.Server.Seed)
	assert.Equal(t, []string{"play", "uno"}, cfg.Discord.Commands)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, gameCfg.MinPlayers)
	assert.Equal(t, 4, gameCfg.MaxPlayers)
	assert.Equal(t, 7, gameCfg.HandSize)
	assert.Equal(t, 90*time.Second, gameCfg.QueueTimeout)
	assert.Equal(t, 6*time.Minute, gameCfg.NegotiationTimeout)
	assert.Equal(t, game.RuleSet{SevenO: true, JumpIn: true}, gameCfg.DefaultRules)
}

func TestLoadServerConfigEmptyRules(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {}

rules {
  enabled = []
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)

	gameCfg, err := cfg.GameConfig()
	require.NoError(t, err)
	assert.Equal(t, game.RuleSet{}, gameCfg.DefaultRules)
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"single player", func(c *ServerConfig) { c.Session.MinPlayers = 1 }},
		{"max below min", func(c *ServerConfig) { c.Session.MaxPlayers = 1 }},
		{"deck too small", func(c *ServerConfig) { c.Session.MaxPlayers = 20 }},
		{"bad timeout", func(c *ServerConfig) { c.Session.QueueTimeout = "soon" }},
		{"negative timeout", func(c *ServerConfig) { c.Session.NegotiationTimeout = "-1s" }},
		{"unknown rule", func(c *ServerConfig) { c.Rules.Enabled = []string{"no_u"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadServerConfigParseError(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `server {`)

	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}
