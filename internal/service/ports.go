package service

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
)

// Transactor runs fn atomically. Stores called with the derived context join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore persists accounts and role profiles. Lookups return pgx.ErrNoRows when absent.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	CreateStudent(ctx context.Context, s *model.Student) error
	CreateProfessor(ctx context.Context, p *model.Professor) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByStudentCode(ctx context.Context, code string) (*model.User, error)
	GetStudentByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	GetStudentByUserID(ctx context.Context, userID uuid.UUID) (*model.Student, error)
	GetProfessorByID(ctx context.Context, id uuid.UUID) (*model.Professor, error)
	GetProfessorByUserID(ctx context.Context, userID uuid.UUID) (*model.Professor, error)
	UpdateStudentLevel(ctx context.Context, studentID uuid.UUID, level model.LanguageLevel) error
	UpdateUser(ctx context.Context, u *model.User) error
	UpdateStudent(ctx context.Context, s *model.Student) error
	UpdateProfessor(ctx context.Context, p *model.Professor) error
	// DeleteUser removes the account; its role profile goes with it.
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListStudents(ctx context.Context, f model.ProfileFilter) ([]model.Student, int, error)
	StudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Student, error)
	ListProfessors(ctx context.Context, f model.ProfileFilter) ([]model.Professor, int, error)
}

// AccessTokenStore persists invitation codes.
type AccessTokenStore interface {
	Create(ctx context.Context, t *model.AccessToken) error
	// Consume marks an unused, unexpired token of the given role as used and returns it.
	Consume(ctx context.Context, token string, role model.Role, usedBy uuid.UUID, now time.Time) (*model.AccessToken, error)
	ListAvailable(ctx context.Context, role *model.Role, now time.Time) ([]model.AccessToken, error)
	DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error)
}

// RoomStore persists rooms. TransitionStatus is a compare-and-set on status.
type RoomStore interface {
	Create(ctx context.Context, r *model.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	Update(ctx context.Context, r *model.Room) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.RoomStatus) (bool, error)
	// EnsureExternalName sets the name only when unset and returns the stored value.
	EnsureExternalName(ctx context.Context, id uuid.UUID, name string) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f model.RoomFilter) ([]model.Room, int, error)
}

// ParticipantStore persists room participants keyed by (room, student).
type ParticipantStore interface {
	Create(ctx context.Context, p *model.RoomParticipant) error
	Get(ctx context.Context, roomID, studentID uuid.UUID) (*model.RoomParticipant, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.RoomParticipant, error)
	MarkJoined(ctx context.Context, roomID, studentID uuid.UUID, at time.Time) error
	MarkLeft(ctx context.Context, roomID, studentID uuid.UUID, at time.Time) error
	CountActive(ctx context.Context, roomID uuid.UUID) (int, error)
	SetMuted(ctx context.Context, roomID, studentID uuid.UUID, muted bool) (*model.RoomParticipant, error)
	SetPinged(ctx context.Context, roomID, studentID uuid.UUID, pingedAt *time.Time) (*model.RoomParticipant, error)
}

// ProviderTokenStore records issued provider credentials.
type ProviderTokenStore interface {
	Create(ctx context.Context, t *model.ProviderToken) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// VideoProvider is the external service hosting the actual audio/video room.
// CreateRoom must tolerate an existing room.
type VideoProvider interface {
	CreateRoom(ctx context.Context, name string, maxParticipants int) error
	DeleteRoom(ctx context.Context, name string) error
	IssueJoinToken(roomName, identity, displayName string, canPublish bool) (*model.JoinCredential, error)
}

// RoomEventPublisher broadcasts live room events.
type RoomEventPublisher interface {
	Publish(ctx context.Context, ev model.RoomEvent) error
}

// SummaryNotifier is told when a room completes.
type SummaryNotifier interface {
	NotifyRoomEnded(ctx context.Context, roomID uuid.UUID, endedAt time.Time) error
}

// ChallengeStore persists challenges.
type ChallengeStore interface {
	Create(ctx context.Context, c *model.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.Challenge, error)
	ListActive(ctx context.Context, now time.Time) ([]model.Challenge, error)
}

// AttemptStore persists challenge attempts keyed by (challenge, student).
type AttemptStore interface {
	// GetForUpdate locks the attempt row for the rest of the transaction.
	GetForUpdate(ctx context.Context, challengeID, studentID uuid.UUID) (*model.ChallengeAttempt, error)
	Create(ctx context.Context, a *model.ChallengeAttempt) error
	Update(ctx context.Context, a *model.ChallengeAttempt) error
	ListByChallenge(ctx context.Context, challengeID uuid.UUID) ([]model.ChallengeAttempt, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ChallengeAttempt, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.ChallengeAttempt, error)
	// Leaderboard aggregates correct attempts per student in first-come order.
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// QuizStore persists quizzes with their questions.
type QuizStore interface {
	Create(ctx context.Context, q *model.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	SetPublished(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f model.QuizFilter) ([]model.Quiz, int, error)
}

// QuizResultStore persists graded submissions keyed by (quiz, student).
type QuizResultStore interface {
	Exists(ctx context.Context, quizID, studentID uuid.UUID) (bool, error)
	Create(ctx context.Context, r *model.QuizResult) error
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.QuizResult, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.QuizResult, error)
}

// EvaluationStore persists evaluations.
type EvaluationStore interface {
	Create(ctx context.Context, e *model.Evaluation) error
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.Evaluation, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, language string) ([]model.Evaluation, error)
}

// SummaryStore persists session summaries, one per room.
type SummaryStore interface {
	Upsert(ctx context.Context, s *model.SessionSummary) error
	CreatePending(ctx context.Context, roomID, professorID uuid.UUID) (bool, error)
	GetByRoom(ctx context.Context, roomID uuid.UUID) (*model.SessionSummary, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.SessionSummary, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionSummary, error)
}

// StatsStore answers the aggregate queries behind dashboards.
type StatsStore interface {
	CountUsersByRole(ctx context.Context, role model.Role) (int, error)
	CountRoomsByStatus(ctx context.Context, professorID *uuid.UUID) (map[string]int, error)
	EvaluationAggregate(ctx context.Context, professorID, studentID *uuid.UUID) (int, float64, error)
	CountUnusedAccessTokens(ctx context.Context, now time.Time) (int, error)
	CountDistinctStudents(ctx context.Context, professorID uuid.UUID) (int, error)
	CountQuizzes(ctx context.Context, createdBy uuid.UUID) (int, error)
	CountChallenges(ctx context.Context, professorID uuid.UUID) (int, error)
	CountAttendedSessions(ctx context.Context, studentID uuid.UUID) (int, error)
	CountUpcomingSessions(ctx context.Context, studentID uuid.UUID, now time.Time) (int, error)
	SumChallengePoints(ctx context.Context, studentID uuid.UUID) (int, error)
	CountQuizzesPassed(ctx context.Context, studentID uuid.UUID) (int, error)
}
