package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lox/unobot/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainSignal(t *testing.T, s *Session) Signal {
	t.Helper()
	select {
	case sig := <-s.Signals():
		return sig
	default:
		t.Fatal("expected a signal")
		return Signal{}
	}
}

func assertNoSignal(t *testing.T, s *Session) {
	t.Helper()
	select {
	case sig := <-s.Signals():
		t.Fatalf("unexpected signal %+v", sig)
	default:
	}
}

func TestSessionNegotiation(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageNegotiating))
	host := s.Host()

	rs, ok := s.RuleSet()
	require.True(t, ok)
	assert.Equal(t, DefaultRuleSet(), rs)

	t.Run("non host cannot change rules", func(t *testing.T) {
		err := s.SetRules(TestPlayer("Mallory"), []Rule{JumpIn})
		assert.ErrorIs(t, err, ErrNotHost)
		got, _ := s.RuleSet()
		assert.Equal(t, DefaultRuleSet(), got)
	})

	t.Run("selection replaces every flag", func(t *testing.T) {
		require.NoError(t, s.SetRules(host, []Rule{SevenO}))
		got, _ := s.RuleSet()
		assert.Equal(t, RuleSet{SevenO: true}, got)
	})

	t.Run("non host cannot continue", func(t *testing.T) {
		assert.ErrorIs(t, s.Continue(TestPlayer("Mallory")), ErrNotHost)
		assertNoSignal(t, s)
	})

	require.NoError(t, s.Continue(host))
	assert.Equal(t, Signal{Stage: StageNegotiating}, drainSignal(t, s))

	// Terminal signal already sent
	assert.ErrorIs(t, s.Continue(host), ErrWrongStage)
	assert.ErrorIs(t, s.SetRules(host, nil), ErrWrongStage)
}

func TestSessionRulesFrozenAfterNegotiation(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing))

	err := s.SetRules(s.Host(), []Rule{JumpIn})
	assert.ErrorIs(t, err, ErrWrongStage)

	rs, _ := s.RuleSet()
	assert.Equal(t, DefaultRuleSet(), rs)
}

func TestSessionQueueing(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing))
	host := s.Host()
	alice := TestPlayer("Alice")

	assert.Equal(t, []Player{host}, s.Players(), "host joins automatically")

	t.Run("start now needs two players", func(t *testing.T) {
		err := s.StartNow(host)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		assert.Contains(t, err.Error(), "at least 2 players")
		assertNoSignal(t, s)
	})

	t.Run("join", func(t *testing.T) {
		require.NoError(t, s.Join(alice))
		assert.Equal(t, []Player{host, alice}, s.Players())
	})

	t.Run("duplicate join is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Join(alice), ErrAlreadyJoined)
		assert.ErrorIs(t, s.Join(host), ErrAlreadyJoined)
		assert.Len(t, s.Players(), 2)
	})

	t.Run("host cannot leave", func(t *testing.T) {
		assert.ErrorIs(t, s.Leave(host), ErrHostCannotLeave)
		assert.Len(t, s.Players(), 2)
	})

	t.Run("leave requires membership", func(t *testing.T) {
		assert.ErrorIs(t, s.Leave(TestPlayer("Bob")), ErrNotJoined)
	})

	t.Run("non host cannot start", func(t *testing.T) {
		assert.ErrorIs(t, s.StartNow(alice), ErrNotHost)
	})

	t.Run("leave and rejoin", func(t *testing.T) {
		require.NoError(t, s.Leave(alice))
		assert.Equal(t, []Player{host}, s.Players())
		require.NoError(t, s.Join(alice))
	})

	require.NoError(t, s.StartNow(host))
	assert.Equal(t, Signal{Stage: StageQueueing}, drainSignal(t, s))
	assert.ErrorIs(t, s.Join(TestPlayer("Late")), ErrWrongStage)
}

func TestSessionJoinAtCapacity(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing), WithMaxPlayers(3))

	require.NoError(t, s.Join(TestPlayer("Alice")))
	assertNoSignal(t, s)
	require.NoError(t, s.Join(TestPlayer("Bob")))

	assert.Equal(t, Signal{Stage: StageQueueing}, drainSignal(t, s), "reaching the maximum ends queueing")
	assert.ErrorIs(t, s.Join(TestPlayer("Carol")), ErrWrongStage)
	assert.Len(t, s.Players(), 3)
}

func TestSessionFull(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxPlayers = 2
	s := NewSession("id", "chan", TestPlayer("Host"), cfg, nil)
	require.NoError(t, s.BeginNegotiation())
	require.NoError(t, s.BeginQueueing())

	// Simulate the window where the maximum was reached but the runner has
	// not yet consumed the signal and re-armed.
	s.players = append(s.players, TestPlayer("Alice"))
	assert.ErrorIs(t, s.Join(TestPlayer("Bob")), ErrSessionFull)
}

func TestSessionCancel(t *testing.T) {
	t.Parallel()

	for _, stage := range []Stage{StageNegotiating, StageQueueing} {
		t.Run(stage.String(), func(t *testing.T) {
			s := NewTestSession(AtStage(stage))

			assert.ErrorIs(t, s.Cancel(TestPlayer("Mallory")), ErrNotHost)
			require.NoError(t, s.Cancel(s.Host()))
			assert.Equal(t, Signal{Stage: stage, Abort: true, Reason: ReasonCancelled}, drainSignal(t, s))
			assert.ErrorIs(t, s.Cancel(s.Host()), ErrWrongStage)
		})
	}

	t.Run("not while playing", func(t *testing.T) {
		s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
		assert.ErrorIs(t, s.Cancel(s.Host()), ErrWrongStage)
	})
}

func TestSessionDeal(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice", "Bob"))

	assert.Equal(t, StagePlaying, s.Stage())
	assert.Equal(t, 0, s.Turn())

	order := s.TurnOrder()
	assert.ElementsMatch(t, s.Players(), order, "every player has exactly one hand")

	for _, n := range s.HandSizes() {
		assert.Equal(t, 7, n)
	}

	_, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, deck.Size-1-3*7, s.DeckSize())

	current, err := s.CurrentPlayer()
	require.NoError(t, err)
	assert.Equal(t, order[0], current)

	hand, err := s.CurrentHand()
	require.NoError(t, err)
	assert.Equal(t, order[0], hand.Player())
}

func TestSessionDealRequiresPlayers(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing))

	err := s.Deal()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, StageQueueing, s.Stage())

	_, err = s.CurrentHand()
	assert.ErrorIs(t, err, ErrNotDealt)
}

func TestSessionDealIsReproducible(t *testing.T) {
	t.Parallel()
	a := NewTestSession(AtStage(StagePlaying), WithJoined("Alice", "Bob", "Carol"), WithSeed(7))
	b := NewTestSession(AtStage(StagePlaying), WithJoined("Alice", "Bob", "Carol"), WithSeed(7))

	assert.Equal(t, a.TurnOrder(), b.TurnOrder())
	topA, _ := a.Current()
	topB, _ := b.Current()
	assert.Equal(t, topA, topB)
}

func TestSessionTransitionsOutOfOrder(t *testing.T) {
	t.Parallel()
	s := NewTestSession()

	assert.ErrorIs(t, s.BeginQueueing(), ErrWrongStage)
	assert.ErrorIs(t, s.Deal(), ErrWrongStage)
	require.NoError(t, s.BeginNegotiation())
	assert.ErrorIs(t, s.BeginNegotiation(), ErrWrongStage)
}

func TestSessionViewHand(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))

	cards, err := s.ViewHand(TestPlayer("Alice"))
	require.NoError(t, err)
	assert.Len(t, cards, 7)

	_, err = s.ViewHand(TestPlayer("Mallory"))
	assert.ErrorIs(t, err, ErrNotInGame)
}

func TestSessionEnd(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))

	assert.ErrorIs(t, s.End(TestPlayer("Alice")), ErrNotHost)
	require.NoError(t, s.End(s.Host()))
	assert.Equal(t, Signal{Stage: StagePlaying, Abort: true, Reason: ReasonEnded}, drainSignal(t, s))

	s.Close(ReasonEnded)
	s.Close(ReasonShutdown)
	assert.Equal(t, StageClosed, s.Stage())
	assert.Equal(t, ReasonEnded, s.CloseReason(), "first reason wins")
}

func TestSessionDraw(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice", "Bob"))
	order := s.TurnOrder()
	deckSize := s.DeckSize()

	t.Run("only the current player draws", func(t *testing.T) {
		_, err := s.Draw(order[1])
		assert.ErrorIs(t, err, ErrNotYourTurn)
		_, err = s.Draw(TestPlayer("Mallory"))
		assert.ErrorIs(t, err, ErrNotInGame)
		assert.Equal(t, deckSize, s.DeckSize())
	})

	for i, p := range order {
		card, err := s.Draw(p)
		require.NoError(t, err)

		cards, err := s.ViewHand(p)
		require.NoError(t, err)
		assert.Len(t, cards, 8)
		assert.Contains(t, cards, card)
		assert.Equal(t, (i+1)%len(order), s.Turn(), "turn passes on after drawing")
	}
	assert.Equal(t, deckSize-len(order), s.DeckSize())
	assert.Equal(t, 0, s.Turn(), "turn wraps around")
}

func TestSessionDrawOutsidePlay(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing), WithJoined("Alice"))

	_, err := s.Draw(s.Host())
	assert.ErrorIs(t, err, ErrWrongStage)

	s = NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
	require.NoError(t, s.End(s.Host()))
	current, err := s.CurrentPlayer()
	require.NoError(t, err)
	_, err = s.Draw(current)
	assert.ErrorIs(t, err, ErrWrongStage, "no draws once the host ended the game")
}

func TestSessionDrawRecyclesDiscards(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
	current, err := s.CurrentPlayer()
	require.NoError(t, err)

	// Empty the deck into the discard pile
	s.mu.Lock()
	for s.deck.Len() > 0 {
		card, err := s.deck.Pop()
		require.NoError(t, err)
		s.discard = append(s.discard, card)
	}
	top := s.discard[len(s.discard)-1]
	pile := len(s.discard)
	s.mu.Unlock()

	_, err = s.Draw(current)
	require.NoError(t, err)

	got, _ := s.Current()
	assert.Equal(t, top, got, "top card stays on the pile")
	assert.Equal(t, pile-2, s.DeckSize())
}

func TestSessionDrawFailsWhenNothingToRecycle(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
	current, err := s.CurrentPlayer()
	require.NoError(t, err)

	s.mu.Lock()
	for s.deck.Len() > 0 {
		_, err := s.deck.Pop()
		require.NoError(t, err)
	}
	s.mu.Unlock()

	_, err = s.Draw(current)
	assert.True(t, errors.Is(err, deck.ErrEmptyDeck))
	assert.Equal(t, 0, s.Turn(), "a failed draw keeps the turn")
}

func TestSessionUnreadSignalDoesNotBlockNextStage(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageNegotiating))
	host := s.Host()

	// The deadline won the race, so the Continue signal is never read
	require.NoError(t, s.Continue(host))
	require.NoError(t, s.BeginQueueing())

	require.NoError(t, s.Join(TestPlayer("Alice")))
	require.NoError(t, s.StartNow(host))
	assert.Equal(t, Signal{Stage: StageQueueing}, drainSignal(t, s))
	assertNoSignal(t, s)
}

func TestSessionExpire(t *testing.T) {
	t.Parallel()

	t.Run("deadline with nothing pending", func(t *testing.T) {
		s := NewTestSession(AtStage(StageQueueing))

		sig, timedOut := s.Expire(StageQueueing)
		assert.True(t, timedOut)
		assert.Equal(t, Signal{Stage: StageQueueing}, sig)

		assert.ErrorIs(t, s.Cancel(s.Host()), ErrWrongStage, "too late to cancel")
		assert.ErrorIs(t, s.Join(TestPlayer("Alice")), ErrWrongStage)
		assertNoSignal(t, s)
	})

	t.Run("accepted cancel wins over the deadline", func(t *testing.T) {
		s := NewTestSession(AtStage(StageNegotiating))
		require.NoError(t, s.Cancel(s.Host()))

		sig, timedOut := s.Expire(StageNegotiating)
		assert.False(t, timedOut)
		assert.Equal(t, Signal{Stage: StageNegotiating, Abort: true, Reason: ReasonCancelled}, sig)
		assertNoSignal(t, s)
	})

	t.Run("accepted start wins over the deadline", func(t *testing.T) {
		s := NewTestSession(AtStage(StageQueueing), WithJoined("Alice"))
		require.NoError(t, s.StartNow(s.Host()))

		sig, timedOut := s.Expire(StageQueueing)
		assert.False(t, timedOut)
		assert.Equal(t, Signal{Stage: StageQueueing}, sig)
	})

	t.Run("earlier stage leaves the current one alone", func(t *testing.T) {
		s := NewTestSession(AtStage(StageQueueing))

		_, timedOut := s.Expire(StageNegotiating)
		assert.True(t, timedOut)
		require.NoError(t, s.Join(TestPlayer("Alice")))
	})
}

func TestSessionConcurrentInteractions(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageQueueing), WithMaxPlayers(0))

	const players = 50
	var wg sync.WaitGroup
	for i := range players {
		p := TestPlayer(fmt.Sprintf("p%d", i))
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = s.Join(p)
		}()
		go func() {
			defer wg.Done()
			// Same player again; exactly one of the two joins lands
			_ = s.Join(p)
		}()
		go func() {
			defer wg.Done()
			_ = s.View()
			_ = s.Players()
		}()
	}
	wg.Wait()

	roster := s.Players()
	assert.Len(t, roster, players+1)
	seen := make(map[string]bool)
	for _, p := range roster {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}

	// Even players race a second leave against their first
	for i := range players {
		p := TestPlayer(fmt.Sprintf("p%d", i))
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Leave(p)
		}()
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.Leave(p)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []Player{s.Host()}, s.Players())
}

func TestSessionHandleDispatch(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StageNegotiating))

	reply, err := s.Handle(Interaction{Actor: s.Host(), Action: ActionRules, Rules: []Rule{JumpIn}})
	require.NoError(t, err)
	assert.True(t, reply.Changed)

	_, err = s.Handle(Interaction{Actor: s.Host(), Action: Action("bogus")})
	assert.Error(t, err)
	assert.False(t, IsRejection(err))

	_, err = s.Handle(Interaction{Actor: TestPlayer("Alice"), Action: ActionJoin})
	r, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "wrong_stage", r.Code)
}

func TestSessionHandleDraw(t *testing.T) {
	t.Parallel()
	s := NewTestSession(AtStage(StagePlaying), WithJoined("Alice"))
	current, err := s.CurrentPlayer()
	require.NoError(t, err)

	reply, err := s.Handle(Interaction{Actor: current, Action: ActionDraw})
	require.NoError(t, err)
	assert.True(t, reply.Changed, "the turn marker moves")
	require.Len(t, reply.Cards, 1)

	_, err = s.Handle(Interaction{Actor: current, Action: ActionDraw})
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

// TestSessionScenario walks a full game start: the host enables only
// seven_o, two players join and the host starts early.
func TestSessionScenario(t *testing.T) {
	t.Parallel()
	host := TestPlayer("Host")
	s := NewTestSession(WithHost(host))

	require.NoError(t, s.BeginNegotiation())
	_, err := s.Handle(Interaction{Actor: host, Action: ActionRules, Rules: []Rule{SevenO}})
	require.NoError(t, err)
	_, err = s.Handle(Interaction{Actor: host, Action: ActionContinue})
	require.NoError(t, err)
	drainSignal(t, s)

	require.NoError(t, s.BeginQueueing())
	for _, name := range []string{"Alice", "Bob"} {
		_, err := s.Handle(Interaction{Actor: TestPlayer(name), Action: ActionJoin})
		require.NoError(t, err)
	}
	_, err = s.Handle(Interaction{Actor: host, Action: ActionStart})
	require.NoError(t, err)
	drainSignal(t, s)

	require.NoError(t, s.Deal())

	rs, _ := s.RuleSet()
	assert.Equal(t, RuleSet{SevenO: true}, rs)
	assert.Len(t, s.TurnOrder(), 3)
	assert.Equal(t, []int{7, 7, 7}, s.HandSizes())
	assert.Equal(t, deck.Size-22, s.DeckSize())
}
