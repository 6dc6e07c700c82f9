package websocket

import "github.com/easylearn/easylearn-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventRoom      Event = "room_event"
	EventConnected Event = "connected"
)

// ConnectedResponse is the first frame sent after the upgrade.
type ConnectedResponse struct {
	Event  Event            `json:"event"`
	RoomID string           `json:"room_id"`
	Status model.RoomStatus `json:"status"`
}

// RoomEventResponse wraps a bus event for the client.
type RoomEventResponse struct {
	Event Event           `json:"event"`
	Data  model.RoomEvent `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
