package lobby

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/randutil"
)

// Service creates sessions and routes interactions to them
type Service struct {
	registry *Registry
	config   game.Config
	clock    quartz.Clock
	logger   *log.Logger
	seed     int64
	started  atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	onWait func(channel string, stage game.Stage)
}

// NewService creates a service. A zero seed shuffles from the wall clock.
func NewService(registry *Registry, config game.Config, clock quartz.Clock, logger *log.Logger, seed int64) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		registry: registry,
		config:   config,
		clock:    clock,
		logger:   logger.WithPrefix("lobby"),
		seed:     seed,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetWaitCallback registers a function called whenever a session starts
// waiting on a stage
func (s *Service) SetWaitCallback(fn func(channel string, stage game.Stage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWait = fn
}

// Registry returns the channel registry
func (s *Service) Registry() *Registry {
	return s.registry
}

// Start creates a session hosted by host in channel and runs it in the
// background. Only one session may run per channel.
func (s *Service) Start(ctx context.Context, channel string, host game.Player, renderer Renderer) (*game.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	n := s.started.Add(1)
	session := game.NewSession(uuid.NewString(), channel, host, s.config, randutil.ForSession(s.seed, n))
	runner := NewRunner(session, renderer, s.clock, s.logger)
	runner.onDone = s.registry.Unregister
	if s.onWait != nil {
		onWait := s.onWait
		runner.SetWaitCallback(func(stage game.Stage) { onWait(channel, stage) })
	}

	if err := s.registry.Register(runner); err != nil {
		return nil, err
	}

	s.logger.Info("Starting session", "channel", channel, "session", session.ID(), "host", host)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		reason := runner.Run(s.ctx)
		s.logger.Debug("Session finished", "channel", channel, "session", session.ID(), "reason", reason)
	}()

	return session, nil
}

// Interact applies an interaction to the channel's session. Accepted
// interactions that change shared state re-render the session message.
// Rejections are returned as *game.Rejection and change nothing.
func (s *Service) Interact(ctx context.Context, channel string, in game.Interaction) (game.Reply, error) {
	runner, ok := s.registry.Lookup(channel)
	if !ok {
		return game.Reply{}, ErrNoSession
	}

	reply, err := runner.Session().Handle(in)
	if err != nil {
		if !game.IsRejection(err) {
			s.logger.Error("Interaction failed", "channel", channel, "action", in.Action, "actor", in.Actor, "error", err)
			return reply, fmt.Errorf("%s: %w", in.Action, err)
		}
		s.logger.Debug("Interaction rejected", "channel", channel, "action", in.Action, "actor", in.Actor, "error", err)
		return reply, err
	}

	s.logger.Debug("Interaction accepted", "channel", channel, "action", in.Action, "actor", in.Actor)
	if reply.Changed {
		if err := runner.Refresh(ctx); err != nil {
			s.logger.Warn("Failed to render session", "channel", channel, "error", err)
		}
	}
	return reply, nil
}

// Lookup returns the session running in a channel
func (s *Service) Lookup(channel string) (*game.Session, bool) {
	runner, ok := s.registry.Lookup(channel)
	if !ok {
		return nil, false
	}
	return runner.Session(), true
}

// Sessions lists running sessions
func (s *Service) Sessions() []Summary {
	return s.registry.List()
}

// Shutdown stops every running session and waits for them to close
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	running := s.registry.Len()
	if running > 0 {
		s.logger.Info("Stopping running sessions", "count", running)
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
