package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomEventType names a live event broadcast to a room's subscribers.
type RoomEventType string

const (
	RoomEventStatusChanged     RoomEventType = "status_changed"
	RoomEventParticipantJoined RoomEventType = "participant_joined"
	RoomEventParticipantLeft   RoomEventType = "participant_left"
	RoomEventMuted             RoomEventType = "muted"
	RoomEventPinged            RoomEventType = "pinged"
	RoomEventPingCleared       RoomEventType = "ping_cleared"
)

// RoomEvent is published on the room's channel whenever live state changes.
type RoomEvent struct {
	Type      RoomEventType `json:"type"`
	RoomID    uuid.UUID     `json:"room_id"`
	UserID    *uuid.UUID    `json:"user_id,omitempty"`
	StudentID *uuid.UUID    `json:"student_id,omitempty"`
	Status    RoomStatus    `json:"status,omitempty"`
	Muted     *bool         `json:"muted,omitempty"`
	At        time.Time     `json:"at"`
}
