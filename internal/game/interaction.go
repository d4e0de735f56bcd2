package game

import (
	"fmt"
	"strings"

	"github.com/lox/unobot/internal/deck"
)

// Action is the kind of an inbound interaction
type Action string

const (
	ActionRules    Action = "rules"
	ActionContinue Action = "continue"
	ActionJoin     Action = "join"
	ActionLeave    Action = "leave"
	ActionStart    Action = "start"
	ActionCancel   Action = "cancel"
	ActionHand     Action = "hand"
	ActionDraw     Action = "draw"
	ActionEnd      Action = "end"
)

var actions = []Action{
	ActionRules, ActionContinue, ActionJoin, ActionLeave,
	ActionStart, ActionCancel, ActionHand, ActionDraw, ActionEnd,
}

func (a Action) String() string {
	return string(a)
}

// ParseAction resolves an action name sent by a transport
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action: %q", s)
}

// Interaction is one event from a participant. Rules carries the full
// selection for ActionRules and is ignored otherwise.
type Interaction struct {
	Actor  Player
	Action Action
	Rules  []Rule
}

// Reply is the outcome of an accepted interaction
type Reply struct {
	// Changed reports that shared state moved and the session message
	// should be rendered again.
	Changed bool
	// Cards holds the actor's private hand for ActionHand, or the card
	// drawn for ActionDraw.
	Cards []deck.Card
}
