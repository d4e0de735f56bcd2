package tui

import (
	"encoding/json"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/unobot/internal/client"
	"github.com/lox/unobot/internal/server"
)

// Conn is the part of *client.Client the bridge drives
type Conn interface {
	AddEventHandler(messageType server.MessageType, handler client.EventHandler)
	Subscribe(channel string) error
	Start(channel string) error
	Interact(channel, action string, rules []string) error
	Done() <-chan struct{}
}

// Sender delivers messages into a running program; *tea.Program satisfies it
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects a client to a TUI model for one channel
type Bridge struct {
	conn    Conn
	channel string
	logger  *log.Logger
}

// NewBridge creates a bridge for channel
func NewBridge(conn Conn, channel string, logger *log.Logger) *Bridge {
	return &Bridge{
		conn:    conn,
		channel: channel,
		logger:  logger.WithPrefix("bridge").With("channel", channel),
	}
}

// Attach forwards server messages to sender and subscribes to the channel
func (b *Bridge) Attach(sender Sender) error {
	b.conn.AddEventHandler(server.MessageTypeRender, func(msg *server.Message) {
		var data server.RenderData
		if b.decode(msg, &data) {
			sender.Send(RenderMsg(data))
		}
	})
	b.conn.AddEventHandler(server.MessageTypeNotice, func(msg *server.Message) {
		var data server.NoticeData
		if b.decode(msg, &data) {
			sender.Send(NoticeMsg{Text: data.Message})
		}
	})
	b.conn.AddEventHandler(server.MessageTypeHand, func(msg *server.Message) {
		var data server.HandData
		if b.decode(msg, &data) && data.Channel == b.channel {
			sender.Send(HandMsg(data.Cards))
		}
	})
	b.conn.AddEventHandler(server.MessageTypeSessionClosed, func(msg *server.Message) {
		var data server.SessionClosedData
		if b.decode(msg, &data) {
			sender.Send(ClosedMsg(data))
		}
	})
	b.conn.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var data server.ErrorData
		if b.decode(msg, &data) {
			sender.Send(NoticeMsg{Text: data.Message, Error: true})
		}
	})

	go func() {
		<-b.conn.Done()
		sender.Send(DisconnectedMsg{})
	}()

	return b.conn.Subscribe(b.channel)
}

// Submit sends a parsed command for the bridge's channel
func (b *Bridge) Submit(cmd Command) error {
	switch {
	case cmd.New:
		return b.conn.Start(b.channel)
	case cmd.Action != "":
		return b.conn.Interact(b.channel, cmd.Action.String(), cmd.Rules)
	default:
		return errors.New("nothing to send")
	}
}

func (b *Bridge) decode(msg *server.Message, into interface{}) bool {
	if err := json.Unmarshal(msg.Data, into); err != nil {
		b.logger.Error("Failed to parse message", "type", msg.Type, "error", err)
		return false
	}
	return true
}
