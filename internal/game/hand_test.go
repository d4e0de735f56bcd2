package game

import (
	"errors"
	"slices"
	"testing"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource wraps a deck and counts pops
type countingSource struct {
	deck *deck.Deck
	pops int
}

func (c *countingSource) Pop() (deck.Card, error) {
	c.pops++
	return c.deck.Pop()
}

func TestHandDraw(t *testing.T) {
	t.Parallel()
	d := deck.New(randutil.New(1))
	d.Shuffle()
	source := &countingSource{deck: d}
	h := NewHand(TestPlayer("Alice"), source)

	drawn, err := h.Draw(7)
	require.NoError(t, err)

	assert.Len(t, drawn, 7)
	assert.Equal(t, 7, h.Len())
	assert.Equal(t, 7, source.pops, "each card is a single pop")
	assert.Equal(t, deck.Size-7, d.Len())
}

func TestHandDrawMovesCardsOutOfDeck(t *testing.T) {
	t.Parallel()
	d := deck.New(randutil.New(3))
	d.Shuffle()
	before := tally(d.Cards())
	h := NewHand(TestPlayer("Alice"), d)

	drawn, err := h.Draw(10)
	require.NoError(t, err)

	held := tally(h.Cards())
	assert.Equal(t, tally(drawn), held)
	assert.Equal(t, deck.Size-10, d.Len())

	// The deck repeats most cards, so compare counts rather than membership:
	// every copy drawn must have left the deck.
	left := tally(d.Cards())
	for card, n := range before {
		assert.Equal(t, n, left[card]+held[card], "copies of %s", card)
	}
}

func tally(cards []deck.Card) map[deck.Card]int {
	counts := make(map[deck.Card]int)
	for _, c := range cards {
		counts[c]++
	}
	return counts
}

func TestHandDrawPropagatesEmptyDeck(t *testing.T) {
	t.Parallel()
	d := deck.New(nil)
	for d.Len() > 2 {
		_, err := d.Pop()
		require.NoError(t, err)
	}
	h := NewHand(TestPlayer("Alice"), d)

	drawn, err := h.Draw(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, deck.ErrEmptyDeck))
	assert.Len(t, drawn, 2)
	assert.Equal(t, 2, h.Len(), "cards drawn before the failure are kept")
}

func TestHandCardsSorted(t *testing.T) {
	t.Parallel()
	d := deck.New(randutil.New(99))
	d.Shuffle()
	h := NewHand(TestPlayer("Alice"), d)
	_, err := h.Draw(20)
	require.NoError(t, err)

	before := slices.Clone(h.cards)
	cards := h.Cards()

	assert.True(t, slices.IsSortedFunc(cards, deck.Compare))
	assert.Equal(t, before, h.cards, "storage order is untouched")
	assert.ElementsMatch(t, before, cards)
}

func TestHandRemove(t *testing.T) {
	t.Parallel()
	d := deck.New(nil)
	h := NewHand(TestPlayer("Alice"), d)
	_, err := h.Draw(3)
	require.NoError(t, err)

	// Canonical order starts Red 0, Red 1, Red 1
	assert.True(t, h.Remove(deck.NewNumber(deck.Red, 1)))
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.Remove(deck.NewNumber(deck.Red, 1)))
	assert.False(t, h.Remove(deck.NewNumber(deck.Red, 1)))
	assert.Equal(t, []deck.Card{deck.NewNumber(deck.Red, 0)}, h.Cards())
}
