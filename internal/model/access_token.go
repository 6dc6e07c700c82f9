package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is a one-time, role-scoped invitation code.
type AccessToken struct {
	ID        uuid.UUID  `json:"id"`
	Token     string     `json:"token"`
	Role      Role       `json:"role"`
	IsUsed    bool       `json:"is_used"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GenerateAccessTokenRequest is the payload for issuing a new invitation code.
type GenerateAccessTokenRequest struct {
	Role Role `json:"role" binding:"required,role"`
}

// ProviderToken records a join credential issued by the video provider.
type ProviderToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RoomID    uuid.UUID `json:"room_id"`
	Identity  string    `json:"identity"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinCredential is what a client needs to connect to the provider's room.
type JoinCredential struct {
	Token      string    `json:"token"`
	Identity   string    `json:"identity"`
	RoomName   string    `json:"room_name"`
	ServerURL  string    `json:"server_url"`
	CanPublish bool      `json:"can_publish"`
	ExpiresAt  time.Time `json:"expires_at"`
}
