package tui

import (
	"fmt"
	"strings"

	"github.com/lox/unobot/internal/game"
)

// Command is a parsed line from the input box
type Command struct {
	// New starts a session in the current channel
	New bool
	// Quit exits the client
	Quit bool
	Help bool

	Action game.Action
	Rules  []string
}

// ParseCommand turns user input into a Command. Action names match the
// session message buttons; "rules" takes a comma or space separated list of
// rule keys, or "none".
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("type a command, or 'help'")
	}

	switch fields[0] {
	case "quit", "exit", "/quit":
		return Command{Quit: true}, nil
	case "help", "?":
		return Command{Help: true}, nil
	case "new", "play", "uno":
		return Command{New: true}, nil
	case "cards":
		return Command{Action: game.ActionHand}, nil
	case "rules":
		return parseRulesCommand(fields[1:])
	}

	action, err := game.ParseAction(fields[0])
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
	return Command{Action: action}, nil
}

func parseRulesCommand(args []string) (Command, error) {
	cmd := Command{Action: game.ActionRules, Rules: []string{}}
	if len(args) == 1 && args[0] == "none" {
		return cmd, nil
	}

	for _, arg := range args {
		for _, key := range strings.Split(arg, ",") {
			if key == "" {
				continue
			}
			cmd.Rules = append(cmd.Rules, key)
		}
	}

	if _, err := game.ParseRules(cmd.Rules); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

const helpText = `Commands:
  new               start a game in this channel
  rules a,b         choose rules (stacking, progressive, seven_o, jump_in, or none)
  continue          finish choosing rules
  join / leave      join or leave the queue
  start             start the game now (host)
  cards             view your cards
  draw              draw a card on your turn
  cancel / end      stop the game (host)
  quit              exit`
