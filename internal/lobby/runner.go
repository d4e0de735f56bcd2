package lobby

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unobot/internal/game"
)

// finalRenderTimeout bounds the closing render once the run context is gone
const finalRenderTimeout = 10 * time.Second

// Renderer publishes a session to its channel. Render replaces the single
// session message; Close is called once when the session ends.
type Renderer interface {
	Render(ctx context.Context, view game.View) error
	Close(ctx context.Context, reason game.CloseReason) error
}

// Runner drives one session through negotiation, queueing and dealing. It
// blocks on the session's terminal signal, the stage deadline or
// cancellation, whichever comes first.
type Runner struct {
	session  *game.Session
	renderer Renderer
	clock    quartz.Clock
	logger   *log.Logger

	renderMu sync.Mutex
	onWait   func(game.Stage)
	onDone   func(*Runner)
	done     chan struct{}
	once     sync.Once
}

// NewRunner creates a runner for a session in StagePending
func NewRunner(session *game.Session, renderer Renderer, clock quartz.Clock, logger *log.Logger) *Runner {
	return &Runner{
		session:  session,
		renderer: renderer,
		clock:    clock,
		logger: logger.WithPrefix("runner").With(
			"session", session.ID(),
			"channel", session.Channel()),
		done: make(chan struct{}),
	}
}

// SetWaitCallback registers a function called each time the runner starts
// waiting on a stage, after its deadline is armed
func (r *Runner) SetWaitCallback(fn func(game.Stage)) {
	r.onWait = fn
}

// Session returns the driven session
func (r *Runner) Session() *game.Session {
	return r.session
}

// Done is closed once the session has been torn down
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Refresh renders the current view of the session
func (r *Runner) Refresh(ctx context.Context) error {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	return r.renderer.Render(ctx, r.session.View())
}

// Run drives the session until it closes and returns the close reason
func (r *Runner) Run(ctx context.Context) game.CloseReason {
	reason := r.run(ctx)
	r.finish(ctx, reason)
	return reason
}

func (r *Runner) run(ctx context.Context) game.CloseReason {
	cfg := r.session.Config()

	if err := r.session.BeginNegotiation(); err != nil {
		r.logger.Error("Failed to begin negotiation", "error", err)
		return game.ReasonFailed
	}
	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("Failed to render session", "error", err)
		return game.ReasonFailed
	}

	sig, timedOut, err := r.await(ctx, game.StageNegotiating, cfg.NegotiationTimeout)
	if err != nil {
		return game.ReasonShutdown
	}
	if sig.Abort {
		return sig.Reason
	}
	if timedOut {
		r.logger.Info("Rule negotiation timed out, keeping current rules")
	}
	rules, _ := r.session.RuleSet()
	r.logger.Info("Rules negotiated", "rules", rules.String())

	if err := r.session.BeginQueueing(); err != nil {
		r.logger.Error("Failed to begin queueing", "error", err)
		return game.ReasonFailed
	}
	r.refresh(ctx)

	sig, timedOut, err = r.await(ctx, game.StageQueueing, cfg.QueueTimeout)
	if err != nil {
		return game.ReasonShutdown
	}
	if sig.Abort {
		return sig.Reason
	}
	if timedOut {
		r.logger.Info("Queue window closed", "players", len(r.session.Players()))
	}

	if err := r.session.Deal(); err != nil {
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			r.logger.Info("Not enough players to deal", "players", len(r.session.Players()))
			return game.ReasonNotEnoughPlayers
		}
		r.logger.Error("Failed to deal", "error", err)
		return game.ReasonFailed
	}
	r.logger.Info("Cards dealt", "players", len(r.session.TurnOrder()), "deck", r.session.DeckSize())
	r.refresh(ctx)

	sig, _, err = r.await(ctx, game.StagePlaying, 0)
	if err != nil {
		return game.ReasonShutdown
	}
	return sig.Reason
}

// await blocks until the stage ends. A zero timeout waits without deadline.
// Signals raised for an earlier stage are discarded. The deadline is settled
// through the session so an interaction racing it is never lost.
func (r *Runner) await(ctx context.Context, stage game.Stage, timeout time.Duration) (game.Signal, bool, error) {
	var expired chan struct{}
	if timeout > 0 {
		expired = make(chan struct{})
		timer := r.clock.AfterFunc(timeout, func() {
			close(expired)
		})
		defer timer.Stop()
	}

	if r.onWait != nil {
		r.onWait(stage)
	}

	for {
		select {
		case sig := <-r.session.Signals():
			if sig.Stage != stage {
				r.logger.Debug("Discarding stale signal", "stage", sig.Stage, "current", stage)
				continue
			}
			return sig, false, nil
		case <-expired:
			sig, timedOut := r.session.Expire(stage)
			return sig, timedOut, nil
		case <-ctx.Done():
			return game.Signal{}, false, ctx.Err()
		}
	}
}

// refresh renders and logs failures; the session keeps running
func (r *Runner) refresh(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("Failed to render session", "error", err)
	}
}

// finish closes the session exactly once
func (r *Runner) finish(ctx context.Context, reason game.CloseReason) {
	r.once.Do(func() {
		defer close(r.done)

		r.session.Close(reason)
		r.logger.Info("Session closed", "reason", reason)
		if r.onDone != nil {
			r.onDone(r)
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalRenderTimeout)
		defer cancel()

		r.refresh(ctx)
		if err := r.renderer.Close(ctx, reason); err != nil {
			r.logger.Warn("Failed to publish session close", "error", err)
		}
	})
}
