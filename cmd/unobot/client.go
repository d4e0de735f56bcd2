package main

import (
	"github.com/alecthomas/kong"
	"github.com/lox/unobot/internal/client/commands"
)

// ClientCmd groups the terminal client commands
type ClientCmd struct {
	commands.GlobalFlags `embed:""`

	Play commands.PlayCommand         `cmd:"" default:"withargs" help:"Open a channel in the terminal UI"`
	List commands.ListSessionsCommand `cmd:"" help:"List running games"`
}

// AfterApply makes the shared flags available to subcommand Run methods
func (c *ClientCmd) AfterApply(kctx *kong.Context) error {
	kctx.Bind(&c.GlobalFlags)
	return nil
}
