package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unobot/cmd/unobot/shared"
	"github.com/lox/unobot/internal/discord"
	"github.com/lox/unobot/internal/lobby"
	"github.com/lox/unobot/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the WebSocket transport, optionally alongside Discord
type ServerCmd struct {
	Config   string `short:"c" default:"unobot.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed (overrides config)"`
	Discord  bool   `help:"Also connect to Discord, sharing the same lobby"`
	Token    string `env:"DISCORD_TOKEN" help:"Discord bot token"`
}

func (c *ServerCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig(c.Config, c.LogLevel, c.Seed)
	if err != nil {
		return err
	}
	logger, closeLog, err := shared.SetupLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	service, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	return c.serve(ctx, cfg, service, logger)
}

// serve builds every transport before starting any, so a bad Discord setup
// never leaves the websocket listener running behind a returned error
func (c *ServerCmd) serve(ctx context.Context, cfg *server.ServerConfig, service *lobby.Service, logger *log.Logger) error {
	var bot *discord.Bot
	if c.Discord {
		var err error
		if bot, err = discord.New(c.token(cfg), service, discordCommand(cfg), logger); err != nil {
			return err
		}
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	logger.Info("Starting UNO server",
		"addr", addr,
		"discord", c.Discord,
		"seed", cfg.Server.Seed)

	wsServer := server.NewServer(addr, service, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Start(gctx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(service, logger)
	})

	return g.Wait()
}

func (c *ServerCmd) token(cfg *server.ServerConfig) string {
	if c.Token != "" {
		return c.Token
	}
	return cfg.Discord.Token
}

// DiscordCmd runs only the Discord transport
type DiscordCmd struct {
	Config   string `short:"c" default:"unobot.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed (overrides config)"`
	Token    string `env:"DISCORD_TOKEN" help:"Discord bot token"`
}

func (c *DiscordCmd) Run(ctx context.Context) error {
	cfg, err := loadConfig(c.Config, c.LogLevel, c.Seed)
	if err != nil {
		return err
	}

	logger, closeLog, err := shared.SetupLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	service, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	token := c.Token
	if token == "" {
		token = cfg.Discord.Token
	}
	bot, err := discord.New(token, service, discordCommand(cfg), logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(service, logger)
	})
	return g.Wait()
}

func loadConfig(path, logLevel string, seed *int64) (*server.ServerConfig, error) {
	cfg, err := server.LoadServerConfig(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if seed != nil {
		cfg.Server.Seed = *seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newService(cfg *server.ServerConfig, logger *log.Logger) (*lobby.Service, error) {
	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return nil, err
	}
	return lobby.NewService(lobby.NewRegistry(), gameCfg, quartz.NewReal(), logger, cfg.Server.Seed), nil
}

func discordCommand(cfg *server.ServerConfig) discord.Command {
	return discord.Command{
		Prefixes: cfg.Discord.Prefixes,
		Names:    cfg.Discord.Commands,
	}
}

// shutdown cancels every running session so each posts its closing message
func shutdown(service *lobby.Service, logger *log.Logger) error {
	logger.Info("Cancelling running games")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := service.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
