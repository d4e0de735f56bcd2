package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lox/unobot/internal/game"
)

const (
	customIDPrefix = "uno:"

	// Discord allows at most five buttons per action row
	maxButtonsPerRow = 5
)

// CustomID returns the component ID for an action
func CustomID(action game.Action) string {
	return customIDPrefix + action.String()
}

// ParseCustomID resolves the action behind a component ID
func ParseCustomID(id string) (game.Action, error) {
	name, ok := strings.CutPrefix(id, customIDPrefix)
	if !ok {
		return "", fmt.Errorf("not an uno component: %q", id)
	}
	return game.ParseAction(name)
}

// Components lays out a view's affordances as message components. Each
// select gets its own row; buttons share rows in order.
func Components(view game.View) []discordgo.MessageComponent {
	rows := []discordgo.MessageComponent{}
	var buttons []discordgo.MessageComponent

	flush := func() {
		if len(buttons) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: buttons})
			buttons = nil
		}
	}

	for _, a := range view.Affordances {
		switch a.Control {
		case game.ControlSelect:
			flush()
			rows = append(rows, discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{selectMenu(a)},
			})
		default:
			if len(buttons) == maxButtonsPerRow {
				flush()
			}
			buttons = append(buttons, discordgo.Button{
				Label:    a.Label,
				Style:    buttonStyle(a.Style),
				Disabled: a.Disabled,
				CustomID: CustomID(a.Action),
			})
		}
	}
	flush()

	return rows
}

func selectMenu(a game.Affordance) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, len(a.Options))
	for i, o := range a.Options {
		options[i] = discordgo.SelectMenuOption{
			Label:       o.Label,
			Value:       o.Value,
			Description: o.Description,
			Default:     o.Selected,
		}
	}

	minValues := a.MinValues
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    CustomID(a.Action),
		Placeholder: a.Placeholder,
		MinValues:   &minValues,
		MaxValues:   a.MaxValues,
		Options:     options,
		Disabled:    a.Disabled,
	}
}

func buttonStyle(s game.Style) discordgo.ButtonStyle {
	switch s {
	case game.StyleSecondary:
		return discordgo.SecondaryButton
	case game.StyleSuccess:
		return discordgo.SuccessButton
	case game.StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}
