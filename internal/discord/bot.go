package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/lobby"
)

// Bot connects the lobby to Discord. Prefix commands start sessions and
// message components drive them.
type Bot struct {
	session *discordgo.Session
	api     API
	service *lobby.Service
	command Command
	logger  *log.Logger
}

// New creates a bot authenticating with token
func New(token string, service *lobby.Service, command Command, logger *log.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := newBot(session, service, command, logger)
	b.session = session
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b, nil
}

func newBot(api API, service *lobby.Service, command Command, logger *log.Logger) *Bot {
	return &Bot{
		api:     api,
		service: service,
		command: command,
		logger:  logger.WithPrefix("discord"),
	}
}

// Run opens the gateway connection and blocks until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	b.logger.Info("Connected to Discord")

	<-ctx.Done()

	b.logger.Info("Disconnecting from Discord")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !b.command.Match(m.Content) {
		return
	}
	b.handleCommand(context.Background(), m.ChannelID, playerFromUser(m.Author))
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	b.handleComponent(context.Background(), i.Interaction)
}

// handleCommand starts a session hosted by the author
func (b *Bot) handleCommand(ctx context.Context, channelID string, host game.Player) {
	defer b.recoverPanic("command", channelID)

	renderer := newMessageRenderer(b.api, channelID, b.logger)
	_, err := b.service.Start(ctx, channelID, host, renderer)
	if err == nil {
		return
	}

	if !errors.Is(err, lobby.ErrSessionExists) {
		b.logger.Error("Failed to start session", "channel", channelID, "error", err)
	}
	if _, sendErr := b.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: capitalize(err.Error()) + ".",
	}); sendErr != nil {
		b.logger.Warn("Failed to report start failure", "channel", channelID, "error", sendErr)
	}
}

// handleComponent routes a button press or select change to the session
func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	defer b.recoverPanic("component", i.ChannelID)

	data := i.MessageComponentData()
	action, err := ParseCustomID(data.CustomID)
	if err != nil {
		b.logger.Debug("Ignoring component", "customId", data.CustomID)
		return
	}

	user := interactionUser(i)
	if user == nil {
		return
	}

	in := game.Interaction{Actor: playerFromUser(user), Action: action}
	if action == game.ActionRules {
		if in.Rules, err = game.ParseRules(data.Values); err != nil {
			b.respondEphemeral(i, "Unknown rule selected.")
			return
		}
	}

	reply, err := b.service.Interact(ctx, i.ChannelID, in)
	if err != nil {
		if r, ok := game.AsRejection(err); ok {
			b.respondEphemeral(i, r.Message)
			return
		}
		if errors.Is(err, lobby.ErrNoSession) {
			b.respondEphemeral(i, "This game is no longer running.")
			return
		}
		b.logger.Error("Interaction failed", "channel", i.ChannelID, "action", action, "error", err)
		b.respondEphemeral(i, "Something went wrong handling that.")
		return
	}

	switch action {
	case game.ActionHand:
		b.respondEphemeral(i, formatHand(reply))
		return
	case game.ActionDraw:
		b.respondEphemeral(i, "You drew a "+reply.Cards[0].String()+".")
		return
	}

	if err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		b.logger.Warn("Failed to acknowledge interaction", "error", err)
	}
}

func (b *Bot) respondEphemeral(i *discordgo.Interaction, content string) {
	err := b.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("Failed to respond to interaction", "error", err)
	}
}

func (b *Bot) recoverPanic(handler, channelID string) {
	if r := recover(); r != nil {
		b.logger.Error("Panic in handler", "handler", handler, "channel", channelID, "panic", r)
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func playerFromUser(u *discordgo.User) game.Player {
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return game.NewPlayer(u.ID, name)
}

func formatHand(reply game.Reply) string {
	if len(reply.Cards) == 0 {
		return "You have no cards."
	}

	labels := make([]string, len(reply.Cards))
	for i, c := range reply.Cards {
		labels[i] = c.String()
	}
	return "Your cards: " + strings.Join(labels, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
