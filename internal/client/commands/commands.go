package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/client"
)

// GlobalFlags holds common configuration for all client commands
type GlobalFlags struct {
	Config   string `short:"c" default:"unobot-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" help:"Player name (overrides config)"`
	PlayerID string `name:"player-id" help:"Stable player ID (overrides config, defaults to the name)"`
	Channel  string `help:"Channel to play in (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
	NoColor  bool   `help:"Disable colour output"`
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.PlayerID != "" {
		cfg.Player.ID = flags.PlayerID
	}
	if flags.Channel != "" {
		cfg.UI.Channel = flags.Channel
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}
	if flags.NoColor {
		cfg.UI.NoColor = true
	}
	return cfg, nil
}

// SetupClient creates, connects and authenticates a client logging to stderr
func SetupClient(ctx context.Context, flags *GlobalFlags) (*client.Client, *client.ClientConfig, *log.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	return setupClientConfigured(ctx, cfg, os.Stderr)
}

// SetupClientWithFileLogging is SetupClient for full screen commands, which
// cannot share the terminal with log output
func SetupClientWithFileLogging(ctx context.Context, flags *GlobalFlags) (*client.Client, *client.ClientConfig, *log.Logger, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// Overwrite each run
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	wsClient, finalCfg, logger, err := setupClientConfigured(ctx, cfg, logFile)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = wsClient.Disconnect()
		_ = logFile.Close()
	}
	return wsClient, finalCfg, logger, cleanup, nil
}

func setupClientConfigured(ctx context.Context, cfg *client.ClientConfig, logWriter io.Writer) (*client.Client, *client.ClientConfig, *log.Logger, error) {
	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Scanln(&input)
		cfg.Player.Name = strings.TrimSpace(input)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate has already checked the level parses
	level, _ := log.ParseLevel(cfg.UI.LogLevel)
	logger := log.NewWithOptions(logWriter, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	wsClient := client.NewClient(cfg.Server.URL, logger)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()
	if err := wsClient.Connect(dialCtx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	if err := wsClient.Auth(cfg.PlayerID(), cfg.Player.Name); err != nil {
		_ = wsClient.Disconnect()
		return nil, nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return wsClient, cfg, logger, nil
}
