package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus enumerates the lifecycle states of a room.
// Transitions only move forward: SCHEDULED → LIVE → COMPLETED.
type RoomStatus string

const (
	RoomStatusScheduled RoomStatus = "SCHEDULED"
	RoomStatusLive      RoomStatus = "LIVE"
	RoomStatusCompleted RoomStatus = "COMPLETED"
)

// AnimatorType describes who animates the session.
type AnimatorType string

const (
	AnimatorProfessor AnimatorType = "PROFESSOR"
	AnimatorAI        AnimatorType = "AI"
)

// Room is a scheduled live teaching session.
type Room struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Language         string        `json:"language"`
	Level            LanguageLevel `json:"level"`
	Objective        string        `json:"objective,omitempty"`
	ScheduledAt      time.Time     `json:"scheduled_at"`
	DurationMinutes  int           `json:"duration_minutes"`
	MaxStudents      int           `json:"max_students"`
	Status           RoomStatus    `json:"status"`
	AnimatorType     AnimatorType  `json:"animator_type"`
	ExternalRoomName *string       `json:"external_room_name,omitempty"`
	ProfessorID      *uuid.UUID    `json:"professor_id,omitempty"`
	ProfessorName    string        `json:"professor_name,omitempty"`
	ParticipantCount int           `json:"participant_count"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// RoomParticipant is a student's invitation and attendance record in a room.
type RoomParticipant struct {
	ID              uuid.UUID  `json:"id"`
	RoomID          uuid.UUID  `json:"room_id"`
	StudentID       uuid.UUID  `json:"student_id"`
	StudentName     string     `json:"student_name,omitempty"`
	Invited         bool       `json:"invited"`
	JoinedAt        *time.Time `json:"joined_at,omitempty"`
	LeftAt          *time.Time `json:"left_at,omitempty"`
	IsMuted         bool       `json:"is_muted"`
	IsPinged        bool       `json:"is_pinged"`
	PingedAt        *time.Time `json:"pinged_at,omitempty"`
	HandRaised      bool       `json:"hand_raised"`
	IsCameraOn      bool       `json:"is_camera_on"`
	IsScreenSharing bool       `json:"is_screen_sharing"`
}

// Active reports whether the participant is currently in the room.
func (p *RoomParticipant) Active() bool {
	return p.JoinedAt != nil && p.LeftAt == nil
}

// CreateRoomRequest is the payload for scheduling a new room.
type CreateRoomRequest struct {
	Name            string        `json:"name" binding:"required,min=3,max=255"`
	Language        string        `json:"language" binding:"required,min=2,max=50"`
	Level           LanguageLevel `json:"level" binding:"required,language_level"`
	Objective       string        `json:"objective" binding:"omitempty,max=2000"`
	ScheduledAt     time.Time     `json:"scheduled_at" binding:"required"`
	DurationMinutes int           `json:"duration_minutes" binding:"required,min=5,max=480"`
	MaxStudents     int           `json:"max_students" binding:"required,min=1,max=100"`
	AnimatorType    AnimatorType  `json:"animator_type" binding:"omitempty,oneof=PROFESSOR AI"`
	ProfessorID     *uuid.UUID    `json:"professor_id" binding:"omitempty"`
	StudentIDs      []uuid.UUID   `json:"student_ids" binding:"omitempty"`
}

// UpdateRoomRequest is a partial update. Status is not updatable here.
type UpdateRoomRequest struct {
	Name            *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Objective       *string    `json:"objective" binding:"omitempty,max=2000"`
	ScheduledAt     *time.Time `json:"scheduled_at" binding:"omitempty"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	MaxStudents     *int       `json:"max_students" binding:"omitempty,min=1,max=100"`
}

// MuteRequest toggles a participant's mute flag.
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	Status      *RoomStatus
	ProfessorID *uuid.UUID
	StudentID   *uuid.UUID
	Page        int
	PerPage     int
	SortDesc    bool
}
