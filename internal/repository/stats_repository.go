package repository

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository runs the aggregate queries behind the dashboards.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// CountUsersByRole counts active accounts of one role.
func (r *StatsRepository) CountUsersByRole(ctx context.Context, role model.Role) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND is_active`, role)
}

// CountRoomsByStatus groups rooms by status, optionally for one professor.
// Every status is present in the result, zero when no room has it.
func (r *StatsRepository) CountRoomsByStatus(ctx context.Context, professorID *uuid.UUID) (map[string]int, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT status, COUNT(*) FROM rooms
		 WHERE $1::uuid IS NULL OR professor_id = $1
		 GROUP BY status`, professorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{
		string(model.RoomStatusScheduled): 0,
		string(model.RoomStatusLive):      0,
		string(model.RoomStatusCompleted): 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// EvaluationAggregate returns the number of evaluations and their mean overall score.
func (r *StatsRepository) EvaluationAggregate(ctx context.Context, professorID, studentID *uuid.UUID) (int, float64, error) {
	var n int
	var avg float64
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(overall_score), 0)::float8 FROM evaluations
		 WHERE ($1::uuid IS NULL OR professor_id = $1) AND ($2::uuid IS NULL OR student_id = $2)`,
		professorID, studentID,
	).Scan(&n, &avg)
	return n, avg, err
}

// CountUnusedAccessTokens counts codes that can still be redeemed.
func (r *StatsRepository) CountUnusedAccessTokens(ctx context.Context, now time.Time) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM access_tokens WHERE NOT is_used AND expires_at > $1`, now)
}

// CountDistinctStudents counts students invited to any of a professor's rooms.
func (r *StatsRepository) CountDistinctStudents(ctx context.Context, professorID uuid.UUID) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(DISTINCT rp.student_id) FROM room_participants rp
		 JOIN rooms r ON r.id = rp.room_id
		 WHERE r.professor_id = $1`, professorID)
}

// CountQuizzes counts quizzes authored by a professor.
func (r *StatsRepository) CountQuizzes(ctx context.Context, createdBy uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM quizzes WHERE created_by = $1`, createdBy)
}

// CountChallenges counts challenges authored by a professor.
func (r *StatsRepository) CountChallenges(ctx context.Context, professorID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM challenges WHERE professor_id = $1`, professorID)
}

// CountAttendedSessions counts rooms the student actually joined.
func (r *StatsRepository) CountAttendedSessions(ctx context.Context, studentID uuid.UUID) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM room_participants WHERE student_id = $1 AND joined_at IS NOT NULL`, studentID)
}

// CountUpcomingSessions counts scheduled rooms the student is invited to.
func (r *StatsRepository) CountUpcomingSessions(ctx context.Context, studentID uuid.UUID, now time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM room_participants rp
		 JOIN rooms r ON r.id = rp.room_id
		 WHERE rp.student_id = $1 AND r.status = $2 AND r.scheduled_at > $3`,
		studentID, model.RoomStatusScheduled, now)
}

// SumChallengePoints totals points from the student's correct attempts.
func (r *StatsRepository) SumChallengePoints(ctx context.Context, studentID uuid.UUID) (int, error) {
	return r.count(ctx,
		`SELECT COALESCE(SUM(points_earned), 0) FROM challenge_attempts WHERE student_id = $1 AND is_correct`, studentID)
}

// CountQuizzesPassed counts the student's passing quiz results.
func (r *StatsRepository) CountQuizzesPassed(ctx context.Context, studentID uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM quiz_results WHERE student_id = $1 AND passed`, studentID)
}
