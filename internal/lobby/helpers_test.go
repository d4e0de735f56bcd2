package lobby

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/game"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeRenderer records every view and the close reason
type fakeRenderer struct {
	mu     sync.Mutex
	views  []game.View
	fail   bool
	closed chan game.CloseReason
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{closed: make(chan game.CloseReason, 1)}
}

func (f *fakeRenderer) Render(_ context.Context, view game.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("render failed")
	}
	f.views = append(f.views, view)
	return nil
}

func (f *fakeRenderer) Close(_ context.Context, reason game.CloseReason) error {
	f.closed <- reason
	return nil
}

func (f *fakeRenderer) last() game.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.views) == 0 {
		return game.View{}
	}
	return f.views[len(f.views)-1]
}

func (f *fakeRenderer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.views)
}

func waitClosed(t *testing.T, f *fakeRenderer) game.CloseReason {
	t.Helper()
	select {
	case reason := <-f.closed:
		return reason
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session to close")
		return ""
	}
}

// stageWaiter collects the stages a runner starts waiting on
type stageWaiter chan game.Stage

func newStageWaiter() stageWaiter {
	return make(stageWaiter, 16)
}

func (w stageWaiter) callback(_ string, stage game.Stage) {
	w <- stage
}

func (w stageWaiter) expect(t *testing.T, stage game.Stage) {
	t.Helper()
	select {
	case got := <-w:
		if got != stage {
			t.Fatalf("expected runner to wait on %s, got %s", stage, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for runner to reach %s", stage)
	}
}
