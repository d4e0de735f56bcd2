package deck

import (
	"errors"
	"math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 108

// ErrEmptyDeck is returned when popping from a deck with no cards left
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is the shared draw pile. It is not safe for concurrent use; the
// owning session serializes access.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full deck in canonical order. Call Shuffle before dealing.
func New(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset rebuilds the full composition in canonical order without shuffling
func (d *Deck) Reset() {
	cards := make([]Card, 0, Size)

	for _, color := range Colors {
		cards = append(cards, NewNumber(color, 0))
		for value := 1; value <= 9; value++ {
			cards = append(cards, NewNumber(color, value), NewNumber(color, value))
		}
		for _, t := range []Type{Skip, Reverse, DrawTwo} {
			cards = append(cards, NewAction(color, t), NewAction(color, t))
		}
	}

	for range 4 {
		cards = append(cards, NewWild(WildCard))
	}
	for range 4 {
		cards = append(cards, NewWild(WildDrawFour))
	}

	d.cards = cards
}

// Shuffle applies a uniform random permutation in place
func (d *Deck) Shuffle() {
	shuffle := rand.Shuffle
	if d.rng != nil {
		shuffle = d.rng.Shuffle
	}
	shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Pop removes and returns the card at the front of the deck
func (d *Deck) Pop() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Refill appends cards to the back of the deck
func (d *Deck) Refill(cards []Card) {
	d.cards = append(d.cards, cards...)
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in deck order
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
