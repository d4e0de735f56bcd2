package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
)

// ServerConfig represents the complete bot configuration shared by the
// WebSocket and Discord transports
type ServerConfig struct {
	Server  ServerSettings   `hcl:"server,block"`
	Discord *DiscordSettings `hcl:"discord,block"`
	Session *SessionSettings `hcl:"session,block"`
	Rules   *RulesSettings   `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

// DiscordSettings configures the Discord transport. The token is normally
// supplied through the environment rather than the file.
type DiscordSettings struct {
	Token    string   `hcl:"token,optional"`
	Prefixes []string `hcl:"prefixes,optional"`
	Commands []string `hcl:"commands,optional"`
}

// SessionSettings contains per-session limits
type SessionSettings struct {
	MinPlayers         int    `hcl:"min_players,optional"`
	MaxPlayers         int    `hcl:"max_players,optional"`
	HandSize           int    `hcl:"hand_size,optional"`
	NegotiationTimeout string `hcl:"negotiation_timeout,optional"`
	QueueTimeout       string `hcl:"queue_timeout,optional"`
}

// RulesSettings lists the rules enabled when negotiation starts
type RulesSettings struct {
	Enabled []string `hcl:"enabled"`
}

// DefaultServerConfig returns default configuration
func DefaultServerConfig() *ServerConfig {
	defaults := game.DefaultConfig()
	enabled := make([]string, 0, len(game.Rules))
	for _, r := range defaults.DefaultRules.Selected() {
		enabled = append(enabled, r.Key())
	}

	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Discord: &DiscordSettings{
			Prefixes: []string{"uno"},
			Commands: []string{"play", "uno"},
		},
		Session: &SessionSettings{
			MinPlayers:         defaults.MinPlayers,
			MaxPlayers:         defaults.MaxPlayers,
			HandSize:           defaults.HandSize,
			NegotiationTimeout: defaults.NegotiationTimeout.String(),
			QueueTimeout:       defaults.QueueTimeout.String(),
		},
		Rules: &RulesSettings{
			Enabled: enabled,
		},
	}
}

// LoadServerConfig loads configuration from an HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills missing values from DefaultServerConfig
func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig()

	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
	}

	if c.Discord == nil {
		c.Discord = defaults.Discord
	}
	if len(c.Discord.Prefixes) == 0 {
		c.Discord.Prefixes = defaults.Discord.Prefixes
	}
	if len(c.Discord.Commands) == 0 {
		c.Discord.Commands = defaults.Discord.Commands
	}

	if c.Session == nil {
		c.Session = defaults.Session
	}
	if c.Session.MinPlayers == 0 {
		c.Session.MinPlayers = defaults.Session.MinPlayers
	}
	if c.Session.MaxPlayers == 0 {
		c.Session.MaxPlayers = defaults.Session.MaxPlayers
	}
	if c.Session.HandSize == 0 {
		c.Session.HandSize = defaults.Session.HandSize
	}
	if c.Session.NegotiationTimeout == "" {
		c.Session.NegotiationTimeout = defaults.Session.NegotiationTimeout
	}
	if c.Session.QueueTimeout == "" {
		c.Session.QueueTimeout = defaults.Session.QueueTimeout
	}

	// An explicit rules block may enable nothing, so only a missing block
	// falls back
	if c.Rules == nil {
		c.Rules = defaults.Rules
	}
}

// Validate validates the configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	_, err := c.GameConfig()
	return err
}

// GameConfig converts the session and rules blocks into session limits
func (c *ServerConfig) GameConfig() (game.Config, error) {
	cfg := game.DefaultConfig()
	if c.Session != nil {
		s := c.Session
		if s.MinPlayers < 2 {
			return cfg, fmt.Errorf("session: min players must be at least 2, got %d", s.MinPlayers)
		}
		if s.MaxPlayers < s.MinPlayers {
			return cfg, fmt.Errorf("session: max players (%d) must not be below min players (%d)", s.MaxPlayers, s.MinPlayers)
		}
		if s.HandSize < 1 {
			return cfg, fmt.Errorf("session: hand size must be positive, got %d", s.HandSize)
		}
		if s.MaxPlayers*s.HandSize+1 > deck.Size {
			return cfg, fmt.Errorf("session: %d players with %d cards each cannot be dealt from %d cards", s.MaxPlayers, s.HandSize, deck.Size)
		}

		negotiation, err := parseTimeout("negotiation_timeout", s.NegotiationTimeout)
		if err != nil {
			return cfg, err
		}
		queue, err := parseTimeout("queue_timeout", s.QueueTimeout)
		if err != nil {
			return cfg, err
		}

		cfg.MinPlayers = s.MinPlayers
		cfg.MaxPlayers = s.MaxPlayers
		cfg.HandSize = s.HandSize
		cfg.NegotiationTimeout = negotiation
		cfg.QueueTimeout = queue
	}

	if c.Rules != nil {
		rules, err := game.ParseRules(c.Rules.Enabled)
		if err != nil {
			return cfg, fmt.Errorf("rules: %w", err)
		}
		cfg.DefaultRules = game.RuleSet{}.Apply(rules)
	}

	return cfg, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

func parseTimeout(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("session: invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session: %s must be positive", name)
	}
	return d, nil
}
