package deck

import "fmt"

// Color represents a card color. Wild cards carry the Wild color.
type Color int

const (
	Red Color = iota
	Yellow
	Blue
	Green
	Wild
)

// Colors lists the four playable colors in canonical order
var Colors = [...]Color{Red, Yellow, Blue, Green}

// String returns the display name of a color
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Blue:
		return "Blue"
	case Green:
		return "Green"
	case Wild:
		return "Wild"
	default:
		return "?"
	}
}

// Type represents what kind of card this is
type Type int

const (
	Number Type = iota
	Skip
	Reverse
	DrawTwo
	WildCard
	WildDrawFour
)

// String returns the display name of a card type
func (t Type) String() string {
	switch t {
	case Number:
		return "Number"
	case Skip:
		return "Skip"
	case Reverse:
		return "Reverse"
	case DrawTwo:
		return "+2"
	case WildCard:
		return "Wild"
	case WildDrawFour:
		return "Wild +4"
	default:
		return "?"
	}
}

// Category groups card types into number, action and wild cards
type Category int

const (
	NumberCategory Category = iota
	ActionCategory
	WildCategory
)

// Category returns the broad category for the type
func (t Type) Category() Category {
	switch t {
	case Number:
		return NumberCategory
	case WildCard, WildDrawFour:
		return WildCategory
	default:
		return ActionCategory
	}
}

// Card is an immutable UNO card. Value is only meaningful for Number cards
// and is zero for everything else, so cards compare structurally with ==.
type Card struct {
	Color Color
	Type  Type
	Value int
}

// NewNumber creates a number card
func NewNumber(color Color, value int) Card {
	return Card{Color: color, Type: Number, Value: value}
}

// NewAction creates a colored action card (Skip, Reverse or DrawTwo)
func NewAction(color Color, t Type) Card {
	return Card{Color: color, Type: t}
}

// NewWild creates a wild card (WildCard or WildDrawFour)
func NewWild(t Type) Card {
	return Card{Color: Wild, Type: t}
}

// HasValue reports whether the card carries a numeric value
func (c Card) HasValue() bool {
	return c.Type == Number
}

// IsWild returns true for colorless wild cards
func (c Card) IsWild() bool {
	return c.Type.Category() == WildCategory
}

// String returns a short label such as "Red 7", "Blue Skip" or "Wild +4"
func (c Card) String() string {
	switch {
	case c.IsWild():
		return c.Type.String()
	case c.HasValue():
		return fmt.Sprintf("%s %d", c.Color, c.Value)
	default:
		return fmt.Sprintf("%s %s", c.Color, c.Type)
	}
}

// Less orders cards by (color, type, value)
func (c Card) Less(other Card) bool {
	if c.Color != other.Color {
		return c.Color < other.Color
	}
	if c.Type != other.Type {
		return c.Type < other.Type
	}
	return c.Value < other.Value
}

// Compare returns -1, 0 or 1 following the (color, type, value) ordering
func Compare(a, b Card) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
