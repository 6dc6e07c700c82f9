package repository

import (
	"context"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles challenge attempt persistence.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptSelect = `SELECT a.id, a.challenge_id, a.student_id, u.name, a.attempts, a.points_earned, a.is_correct,
		a.completed_at, a.created_at
	 FROM challenge_attempts a
	 JOIN students s ON s.id = a.student_id
	 JOIN users u ON u.id = s.user_id`

func scanAttempt(row interface{ Scan(...any) error }) (*model.ChallengeAttempt, error) {
	a := &model.ChallengeAttempt{}
	err := row.Scan(&a.ID, &a.ChallengeID, &a.StudentID, &a.StudentName, &a.Attempts, &a.PointsEarned, &a.IsCorrect,
		&a.CompletedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetForUpdate reads the attempt row and locks it until the surrounding transaction ends.
func (r *AttemptRepository) GetForUpdate(ctx context.Context, challengeID, studentID uuid.UUID) (*model.ChallengeAttempt, error) {
	return scanAttempt(database.Conn(ctx, r.pool).QueryRow(ctx,
		attemptSelect+` WHERE a.challenge_id = $1 AND a.student_id = $2 FOR UPDATE OF a`,
		challengeID, studentID))
}

// Create inserts the first attempt. A concurrent first attempt yields ErrDuplicate.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ChallengeAttempt) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO challenge_attempts (id, challenge_id, student_id, attempts, points_earned, is_correct, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		a.ID, a.ChallengeID, a.StudentID, a.Attempts, a.PointsEarned, a.IsCorrect, a.CompletedAt,
	).Scan(&a.CreatedAt)
	return mapErr(err)
}

// Update writes the attempt counters back.
func (r *AttemptRepository) Update(ctx context.Context, a *model.ChallengeAttempt) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE challenge_attempts
		 SET attempts = $1, points_earned = $2, is_correct = $3, completed_at = $4
		 WHERE id = $5`,
		a.Attempts, a.PointsEarned, a.IsCorrect, a.CompletedAt, a.ID,
	)
	return err
}

// ListByChallenge returns every attempt at a challenge.
func (r *AttemptRepository) ListByChallenge(ctx context.Context, challengeID uuid.UUID) ([]model.ChallengeAttempt, error) {
	return r.list(ctx, attemptSelect+` WHERE a.challenge_id = $1 ORDER BY a.created_at`, challengeID)
}

// ListByStudent returns a student's attempts, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ChallengeAttempt, error) {
	return r.list(ctx, attemptSelect+` WHERE a.student_id = $1 ORDER BY a.created_at DESC`, studentID)
}

// ListByProfessor returns every attempt at any of a professor's challenges.
func (r *AttemptRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.ChallengeAttempt, error) {
	return r.list(ctx, attemptSelect+`
		 JOIN challenges c ON c.id = a.challenge_id
		 WHERE c.professor_id = $1 ORDER BY a.created_at`, professorID)
}

// Leaderboard aggregates correct attempts per student, highest total first.
// Equal totals keep the order in which students first completed a challenge.
func (r *AttemptRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT a.student_id, u.name, SUM(a.points_earned), COUNT(*),
		        COUNT(*) FILTER (WHERE a.attempts = 1)
		 FROM challenge_attempts a
		 JOIN students s ON s.id = a.student_id
		 JOIN users u ON u.id = s.user_id
		 WHERE a.is_correct
		 GROUP BY a.student_id, u.name
		 ORDER BY SUM(a.points_earned) DESC, MIN(a.completed_at) ASC, a.student_id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.StudentID, &e.StudentName, &e.TotalPoints, &e.ChallengesCompleted, &e.PerfectAnswers); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]model.ChallengeAttempt, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.ChallengeAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}
