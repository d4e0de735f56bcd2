package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAffordance(t *testing.T, v View, action Action) Affordance {
	t.Helper()
	for _, a := range v.Affordances {
		if a.Action == action {
			return a
		}
	}
	t.Fatalf("no %s affordance in %s view", action, v.Stage)
	return Affordance{}
}

func TestViewNegotiation(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageNegotiating))
	v := s.View()

	assert.Equal(t, StageNegotiating, v.Stage)
	assert.Contains(t, v.Content, "Host, choose the game rules")
	assert.Contains(t, v.Content, "6 minutes")

	sel := findAffordance(t, v, ActionRules)
	assert.Equal(t, ControlSelect, sel.Control)
	require.Len(t, sel.Options, 4)
	assert.Equal(t, 0, sel.MinValues)
	assert.Equal(t, 4, sel.MaxValues)

	selected := map[string]bool{}
	for _, o := range sel.Options {
		selected[o.Value] = o.Selected
	}
	assert.Equal(t, map[string]bool{
		"stacking":    true,
		"progressive": true,
		"seven_o":     false,
		"jump_in":     false,
	}, selected)

	findAffordance(t, v, ActionContinue)
	findAffordance(t, v, ActionCancel)
}

func TestViewQueueing(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing))

	v := s.View()
	assert.Contains(t, v.Content, "Starting in 3 minutes, or if 10 players join.")
	assert.Contains(t, v.Content, "Host (host)")
	assert.True(t, findAffordance(t, v, ActionStart).Disabled)

	require.NoError(t, s.Join(TestPlayer("Alice")))
	v = s.View()
	assert.Contains(t, v.Content, "Alice")
	assert.False(t, findAffordance(t, v, ActionStart).Disabled)
	findAffordance(t, v, ActionJoin)
	findAffordance(t, v, ActionLeave)
}

func TestViewPlaying(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
	v := s.View()

	top, _ := s.Current()
	current, _ := s.CurrentPlayer()

	assert.Contains(t, v.Content, "Top card: "+top.String())
	assert.Contains(t, v.Content, "> "+current.String()+" (7 cards)")
	assert.Contains(t, v.Content, "It is "+current.String()+"'s turn.")
	findAffordance(t, v, ActionHand)
	assert.Equal(t, "Draw", findAffordance(t, v, ActionDraw).Label)
	findAffordance(t, v, ActionEnd)

	_, err := s.Draw(current)
	require.NoError(t, err)
	v = s.View()
	assert.Contains(t, v.Content, current.String()+" (8 cards)")
	assert.NotContains(t, v.Content, "It is "+current.String()+"'s turn.")
}

func TestViewClosed(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing))
	s.Close(ReasonNotEnoughPlayers)

	v := s.View()
	assert.Equal(t, ReasonNotEnoughPlayers.Message(), v.Content)
	assert.Empty(t, v.Affordances)
}

func TestHumanDuration(t *testing.T) {
	t.Parallel()
	tests := map[time.Duration]string{
		time.Minute:            "1 minute",
		3 * time.Minute:        "3 minutes",
		90 * time.Second:       "90 seconds",
		time.Second:            "1 second",
		500 * time.Millisecond: "500ms",
	}
	for d, want := range tests {
		assert.Equal(t, want, humanDuration(d))
	}
}
