package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/lox/unobot/internal/deck"
)

// Config holds the per-session limits
type Config struct {
	MinPlayers   int
	MaxPlayers   int
	HandSize     int
	DefaultRules RuleSet

	// Stage windows are enforced by the driving loop; the session only
	// uses them to describe the deadline to players.
	NegotiationTimeout time.Duration
	QueueTimeout       time.Duration
}

// DefaultConfig returns the standard limits
func DefaultConfig() Config {
	return Config{
		MinPlayers:         2,
		MaxPlayers:         10,
		HandSize:           7,
		DefaultRules:       DefaultRuleSet(),
		NegotiationTimeout: 360 * time.Second,
		QueueTimeout:       180 * time.Second,
	}
}

// Session is one running game bound to one channel. Every exported method
// takes the session lock, so interactions from different participants are
// applied one at a time.
type Session struct {
	id      string
	channel string
	host    Player
	config  Config
	rng     *rand.Rand

	mu       sync.Mutex
	stage    Stage
	ending   bool // terminal signal already sent for the current stage
	rules    *RuleSet
	players  []Player
	deck     *deck.Deck
	hands    []*Hand
	discard  []deck.Card
	turn     int
	closedBy CloseReason

	signals chan Signal
}

// NewSession creates a session in StagePending. A nil rng is replaced by a
// time seeded source.
func NewSession(id, channel string, host Player, config Config, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Session{
		id:      id,
		channel: channel,
		host:    host,
		config:  config,
		rng:     rng,
		stage:   StagePending,
		deck:    deck.New(rng),
		signals: make(chan Signal, 1),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Channel returns the channel the session is bound to
func (s *Session) Channel() string { return s.channel }

// Host returns the session host
func (s *Session) Host() Player { return s.host }

// Config returns the session limits
func (s *Session) Config() Config { return s.config }

// Signals delivers terminal interactions to the driving loop
func (s *Session) Signals() <-chan Signal { return s.signals }

// Stage returns the current lifecycle stage
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// RuleSet returns the negotiated rules. ok is false before negotiation.
func (s *Session) RuleSet() (RuleSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rules == nil {
		return RuleSet{}, false
	}
	return *s.rules, true
}

// Players returns the player set in join order
func (s *Session) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.players)
}

// TurnOrder returns the players in turn rotation, empty before dealing
func (s *Session) TurnOrder() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := make([]Player, len(s.hands))
	for i, h := range s.hands {
		order[i] = h.Player()
	}
	return order
}

// HandSizes returns the number of cards held per player in turn order
func (s *Session) HandSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sizes := make([]int, len(s.hands))
	for i, h := range s.hands {
		sizes[i] = h.Len()
	}
	return sizes
}

// Current returns the top of the discard pile
func (s *Session) Current() (deck.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Turn returns the index of the hand whose turn it is
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// DeckSize returns the number of cards left to draw
func (s *Session) DeckSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Len()
}

// CloseReason returns why the session closed, empty while it is running
func (s *Session) CloseReason() CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedBy
}

// CurrentHand returns the hand whose turn it is
func (s *Session) CurrentHand() (*Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentHand()
}

// CurrentPlayer returns the player whose turn it is
func (s *Session) CurrentPlayer() (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.currentHand()
	if err != nil {
		return Player{}, err
	}
	return h.Player(), nil
}

func (s *Session) currentHand() (*Hand, error) {
	if len(s.hands) == 0 {
		return nil, ErrNotDealt
	}
	return s.hands[s.turn], nil
}

func (s *Session) current() (deck.Card, bool) {
	if len(s.discard) == 0 {
		return deck.Card{}, false
	}
	return s.discard[len(s.discard)-1], true
}

// BeginNegotiation enters StageNegotiating with the configured default rules
func (s *Session) BeginNegotiation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StagePending {
		return fmt.Errorf("begin negotiation from %s: %w", s.stage, ErrWrongStage)
	}

	rules := s.config.DefaultRules
	s.rules = &rules
	s.enter(StageNegotiating)
	return nil
}

// BeginQueueing enters StageQueueing and makes sure the host is a player
func (s *Session) BeginQueueing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageNegotiating {
		return fmt.Errorf("begin queueing from %s: %w", s.stage, ErrWrongStage)
	}

	s.addPlayer(s.host)
	s.enter(StageQueueing)
	return nil
}

// Deal builds the turn rotation and deals every hand. The session passes
// through StageDealing and lands in StagePlaying.
func (s *Session) Deal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageQueueing {
		return fmt.Errorf("deal from %s: %w", s.stage, ErrWrongStage)
	}
	if len(s.players) < s.config.MinPlayers {
		return notEnoughPlayers(s.config.MinPlayers)
	}

	s.enter(StageDealing)

	source := &recyclingSource{s: s}
	hands := make([]*Hand, len(s.players))
	for i, p := range s.players {
		hands[i] = NewHand(p, source)
	}
	s.rng.Shuffle(len(hands), func(i, j int) {
		hands[i], hands[j] = hands[j], hands[i]
	})
	s.hands = hands

	s.deck.Shuffle()
	top, err := s.deck.Pop()
	if err != nil {
		return fmt.Errorf("turn up first card: %w", err)
	}
	s.discard = append(s.discard, top)

	for _, h := range s.hands {
		if _, err := h.Draw(s.config.HandSize); err != nil {
			return fmt.Errorf("deal: %w", err)
		}
	}

	s.turn = 0
	s.enter(StagePlaying)
	return nil
}

// Close moves the session to StageClosed. The first reason wins.
func (s *Session) Close(reason CloseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == StageClosed {
		return
	}
	s.closedBy = reason
	s.enter(StageClosed)
}

// Handle dispatches an interaction to its handler
func (s *Session) Handle(in Interaction) (Reply, error) {
	switch in.Action {
	case ActionRules:
		return Reply{Changed: true}, s.SetRules(in.Actor, in.Rules)
	case ActionContinue:
		return Reply{}, s.Continue(in.Actor)
	case ActionJoin:
		return Reply{Changed: true}, s.Join(in.Actor)
	case ActionLeave:
		return Reply{Changed: true}, s.Leave(in.Actor)
	case ActionStart:
		return Reply{}, s.StartNow(in.Actor)
	case ActionCancel:
		return Reply{}, s.Cancel(in.Actor)
	case ActionEnd:
		return Reply{}, s.End(in.Actor)
	case ActionHand:
		cards, err := s.ViewHand(in.Actor)
		return Reply{Cards: cards}, err
	case ActionDraw:
		card, err := s.Draw(in.Actor)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Changed: true, Cards: []deck.Card{card}}, nil
	default:
		return Reply{}, fmt.Errorf("unsupported action %q", in.Action)
	}
}

// SetRules replaces every rule flag from the host's selection
func (s *Session) SetRules(actor Player, selection []Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.Is(s.host) {
		return ErrNotHost
	}
	if err := s.expect(StageNegotiating); err != nil {
		return err
	}

	next := s.rules.Apply(selection)
	s.rules = &next
	return nil
}

// Continue ends rule negotiation
func (s *Session) Continue(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.Is(s.host) {
		return ErrNotHost
	}
	if err := s.expect(StageNegotiating); err != nil {
		return err
	}

	s.signal(Signal{Stage: s.stage})
	return nil
}

// Join adds the actor to the player set. Reaching the maximum ends queueing.
func (s *Session) Join(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StageQueueing); err != nil {
		return err
	}
	if s.hasPlayer(actor) {
		return ErrAlreadyJoined
	}
	if s.config.MaxPlayers > 0 && len(s.players) >= s.config.MaxPlayers {
		return ErrSessionFull
	}

	s.addPlayer(actor)
	if s.config.MaxPlayers > 0 && len(s.players) >= s.config.MaxPlayers {
		s.signal(Signal{Stage: s.stage})
	}
	return nil
}

// Leave removes the actor from the player set. The host cannot leave.
func (s *Session) Leave(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StageQueueing); err != nil {
		return err
	}
	if !s.hasPlayer(actor) {
		return ErrNotJoined
	}
	if actor.Is(s.host) {
		return ErrHostCannotLeave
	}

	s.players = slices.DeleteFunc(s.players, actor.Is)
	return nil
}

// StartNow ends queueing early once enough players have joined
func (s *Session) StartNow(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.Is(s.host) {
		return notHost("start")
	}
	if err := s.expect(StageQueueing); err != nil {
		return err
	}
	if len(s.players) < s.config.MinPlayers {
		return notEnoughPlayers(s.config.MinPlayers)
	}

	s.signal(Signal{Stage: s.stage})
	return nil
}

// Cancel abandons the session before play starts
func (s *Session) Cancel(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.Is(s.host) {
		return notHost("cancel")
	}
	if s.stage != StageNegotiating && s.stage != StageQueueing {
		return ErrWrongStage
	}
	if s.ending {
		return ErrWrongStage
	}

	s.signal(Signal{Stage: s.stage, Abort: true, Reason: ReasonCancelled})
	return nil
}

// End stops a game in progress
func (s *Session) End(actor Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !actor.Is(s.host) {
		return notHost("end")
	}
	if err := s.expect(StagePlaying); err != nil {
		return err
	}

	s.signal(Signal{Stage: s.stage, Abort: true, Reason: ReasonEnded})
	return nil
}

// ViewHand returns the actor's cards, sorted for display
func (s *Session) ViewHand(actor Player) ([]deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StagePlaying {
		return nil, ErrWrongStage
	}
	for _, h := range s.hands {
		if h.Player().Is(actor) {
			return h.Cards(), nil
		}
	}
	return nil, ErrNotInGame
}

// Draw gives the player whose turn it is one card and passes the turn on.
// The discard pile is recycled if the deck is exhausted.
func (s *Session) Draw(actor Player) (deck.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StagePlaying); err != nil {
		return deck.Card{}, err
	}
	if !slices.ContainsFunc(s.hands, func(h *Hand) bool { return h.Player().Is(actor) }) {
		return deck.Card{}, ErrNotInGame
	}
	h := s.hands[s.turn]
	if !h.Player().Is(actor) {
		return deck.Card{}, ErrNotYourTurn
	}

	card, err := h.DrawOne()
	if err != nil {
		return deck.Card{}, fmt.Errorf("draw for %s: %w", actor, err)
	}
	s.turn = (s.turn + 1) % len(s.hands)
	return card, nil
}

// Expire ends the stage on its deadline and returns the signal the driving
// loop should act on. A terminal interaction already accepted for the stage
// wins over the deadline; timedOut is false in that case. Once expired, the
// stage rejects further terminal interactions.
func (s *Session) Expire(stage Stage) (sig Signal, timedOut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == stage && s.ending {
		select {
		case pending := <-s.signals:
			if pending.Stage == stage {
				return pending, false
			}
		default:
		}
	}
	if s.stage == stage {
		s.ending = true
	}
	return Signal{Stage: stage}, true
}

// enter switches stage and drops any signal left unread from the previous
// one, so the next stage always has a free slot; must be called with s.mu held
func (s *Session) enter(stage Stage) {
	s.stage = stage
	s.ending = false
	select {
	case <-s.signals:
	default:
	}
}

// expect gates an interaction on the current stage; must be called with s.mu held
func (s *Session) expect(stage Stage) error {
	if s.stage != stage || s.ending {
		return ErrWrongStage
	}
	return nil
}

// signal publishes a terminal event; must be called with s.mu held
func (s *Session) signal(sig Signal) {
	s.ending = true
	select {
	case s.signals <- sig:
	default:
	}
}

func (s *Session) hasPlayer(p Player) bool {
	return slices.ContainsFunc(s.players, p.Is)
}

func (s *Session) addPlayer(p Player) {
	if !s.hasPlayer(p) {
		s.players = append(s.players, p)
	}
}

// recyclingSource draws from the session deck and, when it runs dry, moves
// every discard except the top card back into the deck and reshuffles. It
// runs with the session lock held.
type recyclingSource struct {
	s *Session
}

func (r *recyclingSource) Pop() (deck.Card, error) {
	card, err := r.s.deck.Pop()
	if !errors.Is(err, deck.ErrEmptyDeck) {
		return card, err
	}

	if len(r.s.discard) <= 1 {
		return deck.Card{}, err
	}

	top := r.s.discard[len(r.s.discard)-1]
	r.s.deck.Refill(r.s.discard[:len(r.s.discard)-1])
	r.s.discard = []deck.Card{top}
	r.s.deck.Shuffle()

	return r.s.deck.Pop()
}
