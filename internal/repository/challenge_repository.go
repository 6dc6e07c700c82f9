package repository

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChallengeRepository handles challenge persistence.
type ChallengeRepository struct {
	pool *pgxpool.Pool
}

// NewChallengeRepository creates a new ChallengeRepository.
func NewChallengeRepository(pool *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{pool: pool}
}

const challengeSelect = `SELECT c.id, c.professor_id, u.name, c.subject, c.difficulty, c.title, c.question, c.options,
		c.correct_answer, c.base_points, c.image_url, c.expires_at, c.is_active,
		(SELECT COUNT(*) FROM challenge_attempts a WHERE a.challenge_id = c.id),
		c.created_at
	 FROM challenges c
	 JOIN professors p ON p.id = c.professor_id
	 JOIN users u ON u.id = p.user_id`

func scanChallenge(row interface{ Scan(...any) error }) (*model.Challenge, error) {
	c := &model.Challenge{}
	err := row.Scan(&c.ID, &c.ProfessorID, &c.ProfessorName, &c.Subject, &c.Difficulty, &c.Title, &c.Question, &c.Options,
		&c.CorrectAnswer, &c.BasePoints, &c.ImageURL, &c.ExpiresAt, &c.IsActive, &c.ParticipantCount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new challenge.
func (r *ChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	return database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO challenges (id, professor_id, subject, difficulty, title, question, options, correct_answer,
		                         base_points, image_url, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		c.ID, c.ProfessorID, c.Subject, c.Difficulty, c.Title, c.Question, c.Options, c.CorrectAnswer,
		c.BasePoints, c.ImageURL, c.ExpiresAt, c.IsActive,
	).Scan(&c.CreatedAt)
}

// GetByID retrieves a challenge.
func (r *ChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	return scanChallenge(database.Conn(ctx, r.pool).QueryRow(ctx, challengeSelect+` WHERE c.id = $1`, id))
}

// Delete removes a challenge and its attempts.
func (r *ChallengeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	return err
}

// ListByProfessor returns a professor's challenges, newest first.
func (r *ChallengeRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.Challenge, error) {
	return r.list(ctx, challengeSelect+` WHERE c.professor_id = $1 ORDER BY c.created_at DESC`, professorID)
}

// ListActive returns challenges still open at now, soonest expiry first.
func (r *ChallengeRepository) ListActive(ctx context.Context, now time.Time) ([]model.Challenge, error) {
	return r.list(ctx, challengeSelect+` WHERE c.is_active AND c.expires_at > $1 ORDER BY c.expires_at ASC`, now)
}

func (r *ChallengeRepository) list(ctx context.Context, query string, args ...any) ([]model.Challenge, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}
