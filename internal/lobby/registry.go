package lobby

import (
	"errors"
	"sort"
	"sync"

	"github.com/lox/unobot/internal/game"
)

var (
	// ErrSessionExists is returned when a channel already hosts a session
	ErrSessionExists = errors.New("a game is already running in this channel")
	// ErrNoSession is returned when a channel has no running session
	ErrNoSession = errors.New("there is no game running in this channel")
	// ErrClosed is returned when starting sessions after shutdown
	ErrClosed = errors.New("lobby is shut down")
)

// Summary is lightweight session metadata for listings
type Summary struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
	Host    string `json:"host"`
	Stage   string `json:"stage"`
	Players int    `json:"players"`
}

// Registry tracks the running session of each channel. At most one session
// exists per channel.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*Runner
}

// NewRegistry constructs an empty registry
func NewRegistry() *Registry {
	return &Registry{
		runners: make(map[string]*Runner),
	}
}

// Register binds a runner to its session's channel
func (r *Registry) Register(runner *Runner) error {
	channel := runner.Session().Channel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runners[channel]; ok {
		return ErrSessionExists
	}
	r.runners[channel] = runner
	return nil
}

// Unregister removes the runner from its channel. Removing a runner that is
// not registered, or that has been replaced, is a no-op.
func (r *Registry) Unregister(runner *Runner) {
	channel := runner.Session().Channel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.runners[channel]; ok && current == runner {
		delete(r.runners, channel)
	}
}

// Lookup returns the runner bound to a channel
func (r *Registry) Lookup(channel string) (*Runner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[channel]
	return runner, ok
}

// Len returns the number of running sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runners)
}

// List returns a snapshot of running sessions ordered by channel
func (r *Registry) List() []Summary {
	runners := r.all()
	summaries := make([]Summary, 0, len(runners))
	for _, runner := range runners {
		summaries = append(summaries, summarize(runner.Session()))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Channel < summaries[j].Channel
	})
	return summaries
}

func summarize(s *game.Session) Summary {
	return Summary{
		ID:      s.ID(),
		Channel: s.Channel(),
		Host:    s.Host().String(),
		Stage:   s.Stage().String(),
		Players: len(s.Players()),
	}
}

// all returns every registered runner
func (r *Registry) all() []*Runner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runners := make([]*Runner, 0, len(r.runners))
	for _, runner := range r.runners {
		runners = append(runners, runner)
	}
	return runners
}
