package game

import (
	"fmt"
	"strings"
	"time"
)

// Control is the widget kind a transport should draw for an affordance
type Control int

const (
	ControlButton Control = iota
	ControlSelect
)

// Style hints how prominent a button should be
type Style int

const (
	StylePrimary Style = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Option is one entry of a select affordance
type Option struct {
	Value       string
	Label       string
	Description string
	Selected    bool
}

// Affordance is an interaction currently offered on the session message
type Affordance struct {
	Action      Action
	Control     Control
	Label       string
	Style       Style
	Disabled    bool
	Placeholder string
	Options     []Option
	MinValues   int
	MaxValues   int
}

// View is the content of the single session message. Transports replace
// the previous message with it rather than posting a new one.
type View struct {
	SessionID   string
	Channel     string
	Stage       Stage
	Content     string
	Affordances []Affordance
}

const queueingIntro = "Click the \"Join\" button to join this UNO game."

// View renders the session for its current stage
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID: s.id,
		Channel:   s.channel,
		Stage:     s.stage,
	}

	switch s.stage {
	case StagePending:
		v.Content = "Starting a new UNO game..."
	case StageNegotiating:
		v.Content = s.negotiationContent()
		v.Affordances = s.negotiationAffordances()
	case StageQueueing:
		v.Content = s.queueingContent()
		v.Affordances = s.queueingAffordances()
	case StageDealing:
		v.Content = "Dealing cards..."
	case StagePlaying:
		v.Content = s.playingContent()
		v.Affordances = []Affordance{
			{Action: ActionHand, Control: ControlButton, Label: "View cards", Style: StyleSecondary},
			{Action: ActionDraw, Control: ControlButton, Label: "Draw", Style: StyleSuccess},
			{Action: ActionEnd, Control: ControlButton, Label: "End game", Style: StyleDanger},
		}
	case StageClosed:
		v.Content = s.closedBy.Message()
	}

	return v
}

func (s *Session) negotiationContent() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, choose the game rules you would like to use.\n", s.host)
	if s.config.NegotiationTimeout > 0 {
		fmt.Fprintf(&b, "This prompt closes in %s.\n", humanDuration(s.config.NegotiationTimeout))
	}
	fmt.Fprintf(&b, "\nRules: %s", s.rules)
	return b.String()
}

func (s *Session) negotiationAffordances() []Affordance {
	options := make([]Option, len(Rules))
	for i, r := range Rules {
		options[i] = Option{
			Value:       r.Key(),
			Label:       r.Name(),
			Description: r.Description(),
			Selected:    s.rules.Enabled(r),
		}
	}

	return []Affordance{
		{
			Action:      ActionRules,
			Control:     ControlSelect,
			Placeholder: "Select game rules...",
			Options:     options,
			MinValues:   0,
			MaxValues:   len(Rules),
		},
		{Action: ActionContinue, Control: ControlButton, Label: "Continue", Style: StyleSuccess},
		{Action: ActionCancel, Control: ControlButton, Label: "Cancel", Style: StyleSecondary},
	}
}

func (s *Session) queueingContent() string {
	var b strings.Builder
	b.WriteString(queueingIntro + "\n")

	switch {
	case s.config.QueueTimeout > 0 && s.config.MaxPlayers > 0:
		fmt.Fprintf(&b, "Starting in %s, or if %d players join.\n", humanDuration(s.config.QueueTimeout), s.config.MaxPlayers)
	case s.config.QueueTimeout > 0:
		fmt.Fprintf(&b, "Starting in %s.\n", humanDuration(s.config.QueueTimeout))
	case s.config.MaxPlayers > 0:
		fmt.Fprintf(&b, "Starting when %d players join.\n", s.config.MaxPlayers)
	}
	b.WriteString("The host can also start early.\n\nPlayers:\n")

	for _, p := range s.players {
		b.WriteString(p.String())
		if p.Is(s.host) {
			b.WriteString(" (host)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Session) queueingAffordances() []Affordance {
	return []Affordance{
		{Action: ActionJoin, Control: ControlButton, Label: "Join", Style: StyleSuccess},
		{Action: ActionLeave, Control: ControlButton, Label: "Leave", Style: StyleDanger},
		{
			Action:   ActionStart,
			Control:  ControlButton,
			Label:    "Start!",
			Style:    StylePrimary,
			Disabled: len(s.players) < s.config.MinPlayers,
		},
		{Action: ActionCancel, Control: ControlButton, Label: "Cancel", Style: StyleSecondary},
	}
}

func (s *Session) playingContent() string {
	var b strings.Builder

	if top, ok := s.current(); ok {
		fmt.Fprintf(&b, "Top card: %s\n", top)
	}
	fmt.Fprintf(&b, "Rules: %s\n\nTurn order:\n", s.rules)

	for i, h := range s.hands {
		marker := "  "
		if i == s.turn {
			marker = "> "
		}
		suffix := "s"
		if h.Len() == 1 {
			suffix = ""
		}
		fmt.Fprintf(&b, "%s%s (%d card%s)\n", marker, h.Player(), h.Len(), suffix)
	}

	if h, err := s.currentHand(); err == nil {
		fmt.Fprintf(&b, "\nIt is %s's turn.", h.Player())
	}
	return strings.TrimRight(b.String(), "\n")
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	case d >= time.Second:
		n := int(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	default:
		return d.String()
	}
}
