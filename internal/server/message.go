package server

import (
	"encoding/json"
	"time"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/lobby"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
}

type SubscribeData struct {
	Channel string `json:"channel"`
}

type StartData struct {
	Channel string `json:"channel"`
}

type InteractData struct {
	Channel string   `json:"channel"`
	Action  string   `json:"action"`
	Rules   []string `json:"rules,omitempty"` // Full selection for the rules action
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SubscribedData struct {
	Channel string `json:"channel"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NoticeData is a rejection shown only to the participant who acted
type NoticeData struct {
	Channel string `json:"channel"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OptionData struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
}

type AffordanceData struct {
	Action      string       `json:"action"`
	Control     string       `json:"control"`
	Label       string       `json:"label,omitempty"`
	Style       string       `json:"style,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []OptionData `json:"options,omitempty"`
	MinValues   int          `json:"minValues,omitempty"`
	MaxValues   int          `json:"maxValues,omitempty"`
}

// RenderData replaces the session message identified by MessageID
type RenderData struct {
	Channel     string           `json:"channel"`
	MessageID   string           `json:"messageId"`
	SessionID   string           `json:"sessionId"`
	Stage       string           `json:"stage"`
	Content     string           `json:"content"`
	Affordances []AffordanceData `json:"affordances,omitempty"`
}

type CardData struct {
	Color string `json:"color"`
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
	Label string `json:"label"`
}

// HandData carries a player's private cards
type HandData struct {
	Channel string     `json:"channel"`
	Cards   []CardData `json:"cards"`
}

type SessionClosedData struct {
	Channel string `json:"channel"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type SessionListData struct {
	Sessions []lobby.Summary `json:"sessions"`
}

// Helper functions to convert between internal types and message types

func RenderDataFromView(view game.View, messageID string) RenderData {
	affordances := make([]AffordanceData, len(view.Affordances))
	for i, a := range view.Affordances {
		affordances[i] = AffordanceDataFromGame(a)
	}

	return RenderData{
		Channel:     view.Channel,
		MessageID:   messageID,
		SessionID:   view.SessionID,
		Stage:       view.Stage.String(),
		Content:     view.Content,
		Affordances: affordances,
	}
}

func AffordanceDataFromGame(a game.Affordance) AffordanceData {
	var options []OptionData
	for _, o := range a.Options {
		options = append(options, OptionData{
			Value:       o.Value,
			Label:       o.Label,
			Description: o.Description,
			Selected:    o.Selected,
		})
	}

	control := "button"
	if a.Control == game.ControlSelect {
		control = "select"
	}

	return AffordanceData{
		Action:      a.Action.String(),
		Control:     control,
		Label:       a.Label,
		Style:       styleName(a.Style),
		Disabled:    a.Disabled,
		Placeholder: a.Placeholder,
		Options:     options,
		MinValues:   a.MinValues,
		MaxValues:   a.MaxValues,
	}
}

func CardDataFromDeck(cards []deck.Card) []CardData {
	out := make([]CardData, len(cards))
	for i, c := range cards {
		out[i] = CardData{
			Color: c.Color.String(),
			Type:  c.Type.String(),
			Value: c.Value,
			Label: c.String(),
		}
	}
	return out
}

func styleName(s game.Style) string {
	switch s {
	case game.StylePrimary:
		return "primary"
	case game.StyleSecondary:
		return "secondary"
	case game.StyleSuccess:
		return "success"
	case game.StyleDanger:
		return "danger"
	default:
		return ""
	}
}
