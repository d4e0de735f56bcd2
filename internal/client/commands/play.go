package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/unobot/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCommand opens the session message for a channel in the TUI
type PlayCommand struct {
	New bool `help:"Start a new game in the channel straight away"`
}

func (cmd *PlayCommand) Run(ctx context.Context, flags *GlobalFlags) error {
	wsClient, cfg, logger, cleanup, err := SetupClientWithFileLogging(ctx, flags)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.UI.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger.Info("Starting UNO client TUI",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"channel", cfg.UI.Channel)

	model := tui.NewTUIModel(logger, cfg.UI.Channel)
	bridge := tui.NewBridge(wsClient, cfg.UI.Channel, logger)
	model.SetSubmitter(bridge.Submit)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if err := bridge.Attach(program); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", cfg.UI.Channel, err)
	}

	if cmd.New {
		if err := bridge.Submit(tui.Command{New: true}); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
