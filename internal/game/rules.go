package game

import (
	"fmt"
	"strings"
)

// Rule identifies one negotiable rule toggle
type Rule int

const (
	Stacking Rule = iota
	Progressive
	SevenO
	JumpIn
)

// Rules lists every negotiable rule in display order
var Rules = [...]Rule{Stacking, Progressive, SevenO, JumpIn}

// Key returns the stable identifier used by transports
func (r Rule) Key() string {
	switch r {
	case Stacking:
		return "stacking"
	case Progressive:
		return "progressive"
	case SevenO:
		return "seven_o"
	case JumpIn:
		return "jump_in"
	default:
		return "unknown"
	}
}

// Name returns the display name of the rule
func (r Rule) Name() string {
	switch r {
	case Stacking:
		return "Stacking"
	case Progressive:
		return "Progressive"
	case SevenO:
		return "Seven-O"
	case JumpIn:
		return "Jump In"
	default:
		return "Unknown"
	}
}

// Description explains the rule to players choosing it
func (r Rule) Description() string {
	switch r {
	case Stacking:
		return "Allows the play of multiple cards that have the same value/type at once."
	case Progressive:
		return "Draw cards can be progressively stacked until one must draw."
	case SevenO:
		return "Playing a 7 swaps hands with another player. Playing a 0 passes every hand to the left."
	case JumpIn:
		return "Immediately play a duplicate of the current card, even if it isn't your turn."
	default:
		return "No description provided."
	}
}

// ParseRule resolves a rule from its key
func ParseRule(key string) (Rule, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, r := range Rules {
		if r.Key() == key {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rule: %q", key)
}

// ParseRules resolves a selection of rule keys
func ParseRules(keys []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(keys))
	for _, key := range keys {
		r, err := ParseRule(key)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// RuleSet holds the four gameplay toggles negotiated before play. It is a
// plain value; the session stops accepting changes once negotiation ends.
type RuleSet struct {
	Stacking    bool
	Progressive bool
	SevenO      bool
	JumpIn      bool
}

// DefaultRuleSet returns the rules offered when negotiation starts
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Stacking:    true,
		Progressive: true,
		SevenO:      false,
		JumpIn:      false,
	}
}

// Enabled reports whether a rule is switched on
func (rs RuleSet) Enabled(r Rule) bool {
	switch r {
	case Stacking:
		return rs.Stacking
	case Progressive:
		return rs.Progressive
	case SevenO:
		return rs.SevenO
	case JumpIn:
		return rs.JumpIn
	default:
		return false
	}
}

// Apply returns a rule set where each flag is true iff it appears in the
// selection. Previous values are discarded, not merged.
func (rs RuleSet) Apply(selection []Rule) RuleSet {
	var next RuleSet
	for _, r := range selection {
		switch r {
		case Stacking:
			next.Stacking = true
		case Progressive:
			next.Progressive = true
		case SevenO:
			next.SevenO = true
		case JumpIn:
			next.JumpIn = true
		}
	}
	return next
}

// Selected returns the enabled rules in display order
func (rs RuleSet) Selected() []Rule {
	var selected []Rule
	for _, r := range Rules {
		if rs.Enabled(r) {
			selected = append(selected, r)
		}
	}
	return selected
}

// String returns a comma separated summary of enabled rules
func (rs RuleSet) String() string {
	selected := rs.Selected()
	if len(selected) == 0 {
		return "none"
	}

	names := make([]string, len(selected))
	for i, r := range selected {
		names[i] = r.Name()
	}
	return strings.Join(names, ", ")
}
