package game

import (
	"fmt"
	"slices"

	"github.com/lox/unobot/internal/deck"
)

// CardSource is where a hand draws from. *deck.Deck satisfies it; sessions
// hand out a source that recycles the discard pile when the deck runs dry.
type CardSource interface {
	Pop() (deck.Card, error)
}

// Hand is one player's private cards within a session
type Hand struct {
	player Player
	source CardSource
	cards  []deck.Card
}

// NewHand creates an empty hand drawing from source
func NewHand(player Player, source CardSource) *Hand {
	return &Hand{player: player, source: source}
}

// Player returns the owner of the hand
func (h *Hand) Player() Player {
	return h.player
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// DrawOne draws a single card into the hand
func (h *Hand) DrawOne() (deck.Card, error) {
	card, err := h.source.Pop()
	if err != nil {
		return deck.Card{}, err
	}
	h.cards = append(h.cards, card)
	return card, nil
}

// Draw draws n cards one at a time and returns them in draw order. On
// failure the cards drawn so far stay in the hand and are returned with the
// error.
func (h *Hand) Draw(n int) ([]deck.Card, error) {
	drawn := make([]deck.Card, 0, n)
	for range n {
		card, err := h.DrawOne()
		if err != nil {
			return drawn, fmt.Errorf("draw %d/%d for %s: %w", len(drawn)+1, n, h.player, err)
		}
		drawn = append(drawn, card)
	}
	return drawn, nil
}

// Remove takes the first matching card out of the hand
func (h *Hand) Remove(card deck.Card) bool {
	i := slices.Index(h.cards, card)
	if i < 0 {
		return false
	}
	h.cards = slices.Delete(h.cards, i, i+1)
	return true
}

// Cards returns a sorted snapshot ordered by (color, type, value). The
// hand's own storage order is left alone.
func (h *Hand) Cards() []deck.Card {
	sorted := slices.Clone(h.cards)
	slices.SortStableFunc(sorted, deck.Compare)
	return sorted
}

func (h *Hand) String() string {
	return fmt.Sprintf("%s (%d cards)", h.player, len(h.cards))
}
