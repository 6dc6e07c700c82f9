package model

import (
	"time"

	"github.com/google/uuid"
)

// SummaryStatus tracks whether the professor has written the summary yet.
type SummaryStatus string

const (
	SummaryStatusPending   SummaryStatus = "PENDING"
	SummaryStatusPublished SummaryStatus = "PUBLISHED"
)

// SessionSummary is the professor's write-up of a completed room.
type SessionSummary struct {
	ID              uuid.UUID     `json:"id"`
	RoomID          uuid.UUID     `json:"room_id"`
	RoomName        string        `json:"room_name,omitempty"`
	ProfessorID     uuid.UUID     `json:"professor_id"`
	Status          SummaryStatus `json:"status"`
	Summary         string        `json:"summary"`
	KeyTopics       []string      `json:"key_topics"`
	Strengths       []string      `json:"strengths"`
	AreasToImprove  []string      `json:"areas_to_improve"`
	Recommendations []string      `json:"recommendations"`
	OverallScore    *int          `json:"overall_score,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// UpsertSummaryRequest creates or replaces a room's summary.
type UpsertSummaryRequest struct {
	RoomID          uuid.UUID `json:"room_id" binding:"required"`
	Summary         string    `json:"summary" binding:"required,min=1,max=10000"`
	KeyTopics       []string  `json:"key_topics" binding:"omitempty"`
	Strengths       []string  `json:"strengths" binding:"omitempty"`
	AreasToImprove  []string  `json:"areas_to_improve" binding:"omitempty"`
	Recommendations []string  `json:"recommendations" binding:"omitempty"`
	OverallScore    *int      `json:"overall_score" binding:"omitempty,min=0,max=100"`
}
