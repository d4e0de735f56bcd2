package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lox/unobot/cmd/unobot/shared"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the WebSocket lobby server"`
	Discord DiscordCmd       `cmd:"" help:"Run the Discord bot"`
	Client  ClientCmd        `cmd:"" help:"Connect to a server as an interactive client"`
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx := shared.SetupSignalHandler()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("unobot"),
		kong.Description("Multiplayer UNO lobbies for chat channels"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
