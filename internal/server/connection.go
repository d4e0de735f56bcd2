package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/lobby"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	player    game.Player
	channels  map[string]bool
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		server:   server,
		channels: make(map[string]bool),
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a participant
func (c *Connection) SetPlayer(player game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = player
}

// Player returns the associated participant. ok is false before auth.
func (c *Connection) Player() (game.Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player, c.player.ID != ""
}

// Subscribe adds a channel to the connection's broadcast set
func (c *Connection) Subscribe(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[channel] = true
}

// Subscribed reports whether the connection receives a channel's renders
func (c *Connection) Subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic handling message", "type", msg.Type, "panic", r)
			c.sendError("internal_error", "Something went wrong handling that request")
		}
	}()

	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeSubscribe:
		var data SubscribeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse subscribe data")
			return
		}
		c.handleSubscribe(data)

	case MessageTypeStart:
		var data StartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start data")
			return
		}
		c.handleStart(data)

	case MessageTypeInteract:
		var data InteractData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse interact data")
			return
		}
		c.handleInteract(data)

	case MessageTypeListSessions:
		c.handleListSessions()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendData(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}

// sendNotice tells this participant only why their interaction was refused
func (c *Connection) sendNotice(channel, code, message string) {
	c.sendData(MessageTypeNotice, NoticeData{
		Channel: channel,
		Code:    code,
		Message: message,
	})
}

func (c *Connection) sendData(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerId", data.PlayerID, "playerName", data.PlayerName)

	if data.PlayerID == "" {
		c.sendData(MessageTypeAuthResponse, AuthResponseData{Success: false, Error: "Player ID required"})
		return
	}

	c.SetPlayer(game.NewPlayer(data.PlayerID, data.PlayerName))
	c.sendData(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerID,
	})
}

// authenticated returns the connection's player or reports an error
func (c *Connection) authenticated() (game.Player, bool) {
	player, ok := c.Player()
	if !ok {
		c.sendError("not_authenticated", "Must authenticate first")
	}
	return player, ok
}

func (c *Connection) handleSubscribe(data SubscribeData) {
	if data.Channel == "" {
		c.sendError("invalid_channel", "Channel required")
		return
	}

	c.Subscribe(data.Channel)
	c.sendData(MessageTypeSubscribed, SubscribedData{Channel: data.Channel})

	// Late subscribers get the current session message
	c.server.sendCurrent(c, data.Channel)
}

func (c *Connection) handleStart(data StartData) {
	player, ok := c.authenticated()
	if !ok {
		return
	}
	if data.Channel == "" {
		c.sendError("invalid_channel", "Channel required")
		return
	}

	c.logger.Info("Start request", "channel", data.Channel)
	c.Subscribe(data.Channel)

	_, err := c.server.service.Start(c.ctx, data.Channel, player, c.server.newRenderer(data.Channel))
	switch {
	case err == nil:
	case errors.Is(err, lobby.ErrSessionExists):
		c.sendNotice(data.Channel, "session_exists", err.Error())
	default:
		c.logger.Error("Failed to start session", "channel", data.Channel, "error", err)
		c.sendError("start_failed", err.Error())
	}
}

func (c *Connection) handleInteract(data InteractData) {
	player, ok := c.authenticated()
	if !ok {
		return
	}

	action, err := game.ParseAction(data.Action)
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}

	var rules []game.Rule
	if action == game.ActionRules {
		if rules, err = game.ParseRules(data.Rules); err != nil {
			c.sendError("invalid_rules", err.Error())
			return
		}
	}

	c.Subscribe(data.Channel)

	reply, err := c.server.service.Interact(c.ctx, data.Channel, game.Interaction{
		Actor:  player,
		Action: action,
		Rules:  rules,
	})
	if err != nil {
		if r, ok := game.AsRejection(err); ok {
			c.sendNotice(data.Channel, r.Code, r.Message)
			return
		}
		if errors.Is(err, lobby.ErrNoSession) {
			c.sendNotice(data.Channel, "no_session", err.Error())
			return
		}
		c.sendError("interaction_failed", err.Error())
		return
	}

	switch action {
	case game.ActionHand:
		c.sendData(MessageTypeHand, HandData{
			Channel: data.Channel,
			Cards:   CardDataFromDeck(reply.Cards),
		})
	case game.ActionDraw:
		c.sendNotice(data.Channel, "drew", "You drew a "+reply.Cards[0].String()+".")
	}
}

func (c *Connection) handleListSessions() {
	c.sendData(MessageTypeSessionList, SessionListData{
		Sessions: c.server.service.Sessions(),
	})
}
