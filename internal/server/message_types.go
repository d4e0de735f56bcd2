package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth         MessageType = "auth"
	MessageTypeSubscribe    MessageType = "subscribe"
	MessageTypeStart        MessageType = "start"
	MessageTypeInteract     MessageType = "interact"
	MessageTypeListSessions MessageType = "list_sessions"

	// Server to client messages
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeSubscribed    MessageType = "subscribed"
	MessageTypeRender        MessageType = "render"
	MessageTypeNotice        MessageType = "notice"
	MessageTypeHand          MessageType = "hand"
	MessageTypeSessionClosed MessageType = "session_closed"
	MessageTypeSessionList   MessageType = "session_list"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
