package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/game"
)

// API is the subset of *discordgo.Session the transport uses
type API interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// messageRenderer keeps one Discord message per session and edits it in
// place. If the message has been deleted a new one is sent.
type messageRenderer struct {
	api       API
	channelID string
	logger    *log.Logger

	mu        sync.Mutex
	messageID string
}

func newMessageRenderer(api API, channelID string, logger *log.Logger) *messageRenderer {
	return &messageRenderer{
		api:       api,
		channelID: channelID,
		logger:    logger.With("channel", channelID),
	}
}

func (r *messageRenderer) Render(ctx context.Context, view game.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	components := Components(view)

	if r.messageID != "" {
		content := view.Content
		_, err := r.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         r.messageID,
			Channel:    r.channelID,
			Content:    &content,
			Components: &components,
		}, discordgo.WithContext(ctx))
		if err == nil {
			return nil
		}
		if !isUnknownMessage(err) {
			return err
		}
		r.logger.Warn("Session message is gone, sending a new one", "message", r.messageID)
	}

	msg, err := r.api.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Content:    view.Content,
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	r.messageID = msg.ID
	return nil
}

// Close forgets the message; the closing render already shows the reason
func (r *messageRenderer) Close(_ context.Context, reason game.CloseReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Debug("Session message released", "message", r.messageID, "reason", reason)
	r.messageID = ""
	return nil
}

func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
