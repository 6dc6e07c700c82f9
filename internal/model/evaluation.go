package model

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is a professor's skill assessment of a student.
type Evaluation struct {
	ID             uuid.UUID      `json:"id"`
	StudentID      uuid.UUID      `json:"student_id"`
	StudentName    string         `json:"student_name,omitempty"`
	ProfessorID    uuid.UUID      `json:"professor_id"`
	ProfessorName  string         `json:"professor_name,omitempty"`
	Language       string         `json:"language"`
	Pronunciation  int            `json:"pronunciation"`
	Grammar        int            `json:"grammar"`
	Vocabulary     int            `json:"vocabulary"`
	Fluency        int            `json:"fluency"`
	OverallScore   int            `json:"overall_score"`
	AssignedLevel  *LanguageLevel `json:"assigned_level,omitempty"`
	Feedback       string         `json:"feedback,omitempty"`
	Strengths      []string       `json:"strengths"`
	AreasToImprove []string       `json:"areas_to_improve"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CreateEvaluationRequest is the payload for evaluating a student.
type CreateEvaluationRequest struct {
	StudentID      uuid.UUID      `json:"student_id" binding:"required"`
	Language       string         `json:"language" binding:"required,min=2,max=50"`
	Pronunciation  int            `json:"pronunciation" binding:"min=0,max=100"`
	Grammar        int            `json:"grammar" binding:"min=0,max=100"`
	Vocabulary     int            `json:"vocabulary" binding:"min=0,max=100"`
	Fluency        int            `json:"fluency" binding:"min=0,max=100"`
	AssignedLevel  *LanguageLevel `json:"assigned_level" binding:"omitempty,language_level"`
	Feedback       string         `json:"feedback" binding:"omitempty,max=5000"`
	Strengths      []string       `json:"strengths" binding:"omitempty"`
	AreasToImprove []string       `json:"areas_to_improve" binding:"omitempty"`
}

// UpdateLevelRequest changes a student's level directly.
type UpdateLevelRequest struct {
	Level LanguageLevel `json:"level" binding:"required,language_level"`
}
