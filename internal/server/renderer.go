package server

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lox/unobot/internal/game"
)

// channelRenderer publishes one session to every connection subscribed to
// its channel. All renders carry the same message ID so clients replace the
// previous content instead of appending.
type channelRenderer struct {
	server    *Server
	channel   string
	messageID string

	mu   sync.Mutex
	last *RenderData
}

func (s *Server) newRenderer(channel string) *channelRenderer {
	return &channelRenderer{
		server:    s,
		channel:   channel,
		messageID: uuid.NewString(),
	}
}

func (r *channelRenderer) Render(ctx context.Context, view game.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := RenderDataFromView(view, r.messageID)
	msg, err := NewMessage(MessageTypeRender, data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.last = &data
	r.mu.Unlock()

	// Only the channel's running session renders, so the latest wins
	r.server.mu.Lock()
	r.server.renderers[r.channel] = r
	r.server.mu.Unlock()

	r.server.BroadcastToChannel(r.channel, msg)
	return nil
}

func (r *channelRenderer) Close(ctx context.Context, reason game.CloseReason) error {
	r.server.mu.Lock()
	if r.server.renderers[r.channel] == r {
		delete(r.server.renderers, r.channel)
	}
	r.server.mu.Unlock()

	msg, err := NewMessage(MessageTypeSessionClosed, SessionClosedData{
		Channel: r.channel,
		Reason:  string(reason),
		Message: reason.Message(),
	})
	if err != nil {
		return err
	}

	r.server.BroadcastToChannel(r.channel, msg)
	return nil
}

// current returns the most recent render, if any
func (r *channelRenderer) current() (RenderData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return RenderData{}, false
	}
	return *r.last, true
}
