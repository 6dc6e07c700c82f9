package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject is the academic area a challenge belongs to.
type Subject string

const (
	SubjectMathematics  Subject = "Mathematics"
	SubjectPhysics      Subject = "Physics"
	SubjectChemistry    Subject = "Chemistry"
	SubjectBiology      Subject = "Biology"
	SubjectEarthScience Subject = "EarthScience"
	SubjectFrench       Subject = "French"
	SubjectEnglish      Subject = "English"
	SubjectArabic       Subject = "Arabic"
)

// Difficulty scales the reward of a challenge.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	switch s {
	case SubjectMathematics, SubjectPhysics, SubjectChemistry, SubjectBiology,
		SubjectEarthScience, SubjectFrench, SubjectEnglish, SubjectArabic:
		return true
	}
	return false
}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Multiplier returns the point multiplier for the difficulty.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyMedium:
		return 1.5
	case DifficultyHard:
		return 2.0
	default:
		return 1.0
	}
}

const (
	ChallengeOptionCount    = 4
	ChallengeMaxAttempts    = 2
	ChallengeMinBasePoints  = 10
	ChallengeMaxBasePoints  = 200
	ChallengeMinExpiryHours = 1
	ChallengeMaxExpiryHours = 168
)

// Challenge is a professor-authored timed question open to all students.
type Challenge struct {
	ID               uuid.UUID  `json:"id"`
	ProfessorID      uuid.UUID  `json:"professor_id"`
	ProfessorName    string     `json:"professor_name,omitempty"`
	Subject          Subject    `json:"subject"`
	Difficulty       Difficulty `json:"difficulty"`
	Title            string     `json:"title"`
	Question         string     `json:"question"`
	Options          []string   `json:"options"`
	CorrectAnswer    int        `json:"correct_answer"`
	BasePoints       int        `json:"base_points"`
	ImageURL         *string    `json:"image_url,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	IsActive         bool       `json:"is_active"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Open reports whether the challenge still accepts answers at now.
func (c *Challenge) Open(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}

// ChallengeForStudent hides the correct answer.
type ChallengeForStudent struct {
	ID            uuid.UUID  `json:"id"`
	ProfessorName string     `json:"professor_name,omitempty"`
	Subject       Subject    `json:"subject"`
	Difficulty    Difficulty `json:"difficulty"`
	Title         string     `json:"title"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	BasePoints    int        `json:"base_points"`
	ImageURL      *string    `json:"image_url,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Attempts      int        `json:"attempts"`
	Solved        bool       `json:"solved"`
}

// ChallengeAttempt tracks one student's tries at one challenge.
type ChallengeAttempt struct {
	ID           uuid.UUID  `json:"id"`
	ChallengeID  uuid.UUID  `json:"challenge_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	StudentName  string     `json:"student_name,omitempty"`
	Attempts     int        `json:"attempts"`
	PointsEarned int        `json:"points_earned"`
	IsCorrect    bool       `json:"is_correct"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreateChallengeRequest is the payload for authoring a challenge.
type CreateChallengeRequest struct {
	Subject        Subject    `json:"subject" binding:"required,subject"`
	Difficulty     Difficulty `json:"difficulty" binding:"required,difficulty"`
	Title          string     `json:"title" binding:"required,min=3,max=255"`
	Question       string     `json:"question" binding:"required,min=3"`
	Options        []string   `json:"options" binding:"required,len=4,dive,required"`
	CorrectAnswer  int        `json:"correct_answer" binding:"min=0,max=3"`
	BasePoints     int        `json:"base_points" binding:"required,min=10,max=200"`
	ImageURL       *string    `json:"image_url" binding:"omitempty,url"`
	ExpiresInHours int        `json:"expires_in_hours" binding:"required,min=1,max=168"`
}

// SubmitChallengeAnswerRequest carries the selected option index.
type SubmitChallengeAnswerRequest struct {
	SelectedAnswer *int `json:"selected_answer" binding:"required,min=0,max=3"`
}

// ChallengeAnswerResult is returned after each submission.
// CorrectAnswer is only populated on the final attempt.
type ChallengeAnswerResult struct {
	Correct        bool `json:"correct"`
	CorrectAnswer  *int `json:"correct_answer"`
	PointsEarned   int  `json:"points_earned"`
	AttemptNumber  int  `json:"attempt_number"`
	IsFinalAttempt bool `json:"is_final_attempt"`
}

// LeaderboardEntry is one student's aggregate over correct attempts.
type LeaderboardEntry struct {
	Rank                int       `json:"rank"`
	StudentID           uuid.UUID `json:"student_id"`
	StudentName         string    `json:"student_name"`
	TotalPoints         int       `json:"total_points"`
	ChallengesCompleted int       `json:"challenges_completed"`
	PerfectAnswers      int       `json:"perfect_answers"`
}

// ChallengeStats summarises a professor's challenges.
type ChallengeStats struct {
	TotalChallenges   int     `json:"total_challenges"`
	ActiveChallenges  int     `json:"active_challenges"`
	TotalParticipants int     `json:"total_participants"`
	AveragePoints     float64 `json:"average_points"`
	SuccessRate       float64 `json:"success_rate"`
}
