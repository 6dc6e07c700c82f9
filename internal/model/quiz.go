package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultPassingScore = 60

// Quiz is a multi-question assessment, optionally tied to a room.
type Quiz struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Language      string         `json:"language"`
	SessionID     *uuid.UUID     `json:"session_id,omitempty"`
	TimeLimit     *int           `json:"time_limit,omitempty"`
	PassingScore  int            `json:"passing_score"`
	IsPublished   bool           `json:"is_published"`
	CreatedBy     uuid.UUID      `json:"created_by"`
	CreatorName   string         `json:"creator_name,omitempty"`
	QuestionCount int            `json:"question_count"`
	Questions     []QuizQuestion `json:"questions,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// QuizQuestion belongs to exactly one quiz.
type QuizQuestion struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer *int      `json:"correct_answer,omitempty"`
	Points        int       `json:"points"`
	OrderIndex    int       `json:"order_index"`
}

// WithoutAnswers returns a copy safe to show to students.
func (q *Quiz) WithoutAnswers() *Quiz {
	out := *q
	out.Questions = make([]QuizQuestion, len(q.Questions))
	for i, qq := range q.Questions {
		qq.CorrectAnswer = nil
		out.Questions[i] = qq
	}
	return &out
}

// QuizResult is a student's single graded submission.
type QuizResult struct {
	ID             uuid.UUID    `json:"id"`
	QuizID         uuid.UUID    `json:"quiz_id"`
	QuizTitle      string       `json:"quiz_title,omitempty"`
	StudentID      uuid.UUID    `json:"student_id"`
	StudentName    string       `json:"student_name,omitempty"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Passed         bool         `json:"passed"`
	CompletedAt    time.Time    `json:"completed_at"`
	Answers        []QuizAnswer `json:"answers,omitempty"`
}

// QuizAnswer is one graded answer within a result.
type QuizAnswer struct {
	ID             uuid.UUID `json:"id"`
	ResultID       uuid.UUID `json:"result_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer int       `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct"`
}

// CreateQuizRequest is the payload for authoring a quiz with its questions.
type CreateQuizRequest struct {
	Title        string                      `json:"title" binding:"required,min=3,max=255"`
	Description  string                      `json:"description" binding:"omitempty,max=2000"`
	Language     string                      `json:"language" binding:"required,min=2,max=50"`
	SessionID    *uuid.UUID                  `json:"session_id" binding:"omitempty"`
	TimeLimit    *int                        `json:"time_limit" binding:"omitempty,min=1,max=480"`
	PassingScore *int                        `json:"passing_score" binding:"omitempty,min=0,max=100"`
	Questions    []CreateQuizQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

// CreateQuizQuestionRequest is one question inside CreateQuizRequest.
type CreateQuizQuestionRequest struct {
	Question      string   `json:"question" binding:"required,min=1"`
	Options       []string `json:"options" binding:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
	Points        *int     `json:"points" binding:"omitempty,min=1"`
}

// SubmitQuizRequest carries every answer of a submission.
type SubmitQuizRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}

// SubmittedAnswer is one answer inside SubmitQuizRequest.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedAnswer int       `json:"selected_answer" binding:"min=0"`
}

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	SessionID   *uuid.UUID
	Language    string
	IsPublished *bool
	CreatedBy   *uuid.UUID
	Search      string
	Page        int
	PerPage     int
}
