package game

import (
	"fmt"

	"github.com/lox/unobot/internal/randutil"
)

// TestSessionOption configures test session creation
type TestSessionOption func(*testSessionBuilder)

type testSessionBuilder struct {
	seed    int64
	channel string
	host    Player
	config  Config
	players []string
	stage   Stage
}

// Test session options
func WithSeed(seed int64) TestSessionOption {
	return func(b *testSessionBuilder) { b.seed = seed }
}

func WithChannel(channel string) TestSessionOption {
	return func(b *testSessionBuilder) { b.channel = channel }
}

func WithHost(host Player) TestSessionOption {
	return func(b *testSessionBuilder) { b.host = host }
}

func WithConfig(config Config) TestSessionOption {
	return func(b *testSessionBuilder) { b.config = config }
}

func WithMaxPlayers(n int) TestSessionOption {
	return func(b *testSessionBuilder) { b.config.MaxPlayers = n }
}

// WithJoined joins the named players once the session reaches queueing
func WithJoined(names ...string) TestSessionOption {
	return func(b *testSessionBuilder) { b.players = names }
}

// AtStage advances the session to the given stage before returning it
func AtStage(stage Stage) TestSessionOption {
	return func(b *testSessionBuilder) { b.stage = stage }
}

// TestPlayer returns a player whose ID is derived from the name
func TestPlayer(name string) Player {
	return NewPlayer("id-"+name, name)
}

// NewTestSession creates a session for testing with sensible defaults. It
// panics if the requested stage cannot be reached.
func NewTestSession(opts ...TestSessionOption) *Session {
	builder := &testSessionBuilder{
		seed:    42,
		channel: "test-channel",
		host:    TestPlayer("Host"),
		config:  DefaultConfig(),
		stage:   StagePending,
	}

	for _, opt := range opts {
		opt(builder)
	}

	s := NewSession("test-session", builder.channel, builder.host, builder.config, randutil.New(builder.seed))

	steps := []struct {
		stage Stage
		run   func() error
	}{
		{StageNegotiating, s.BeginNegotiation},
		{StageQueueing, func() error {
			if err := s.BeginQueueing(); err != nil {
				return err
			}
			for _, name := range builder.players {
				if err := s.Join(TestPlayer(name)); err != nil {
					return fmt.Errorf("join %s: %w", name, err)
				}
			}
			return nil
		}},
		{StagePlaying, s.Deal},
	}

	for _, step := range steps {
		if builder.stage < step.stage {
			break
		}
		if err := step.run(); err != nil {
			panic(fmt.Sprintf("advance test session to %s: %v", step.stage, err))
		}
	}

	return s
}
