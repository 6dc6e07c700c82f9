package repository

import (
	"context"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummaryRepository handles session summaries, one per room.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

const summarySelect = `SELECT ss.id, ss.room_id, r.name, ss.professor_id, ss.status, ss.summary, ss.key_topics,
		ss.strengths, ss.areas_to_improve, ss.recommendations, ss.overall_score, ss.created_at, ss.updated_at
	 FROM session_summaries ss
	 JOIN rooms r ON r.id = ss.room_id`

func scanSummary(row interface{ Scan(...any) error }) (*model.SessionSummary, error) {
	s := &model.SessionSummary{}
	err := row.Scan(&s.ID, &s.RoomID, &s.RoomName, &s.ProfessorID, &s.Status, &s.Summary, &s.KeyTopics,
		&s.Strengths, &s.AreasToImprove, &s.Recommendations, &s.OverallScore, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert creates the room's summary or overwrites the existing one. The stored
// ID and timestamps are written back into s.
func (r *SummaryRepository) Upsert(ctx context.Context, s *model.SessionSummary) error {
	return database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO session_summaries (id, room_id, professor_id, status, summary, key_topics, strengths,
		                                areas_to_improve, recommendations, overall_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (room_id) DO UPDATE SET
		     professor_id = EXCLUDED.professor_id,
		     status = EXCLUDED.status,
		     summary = EXCLUDED.summary,
		     key_topics = EXCLUDED.key_topics,
		     strengths = EXCLUDED.strengths,
		     areas_to_improve = EXCLUDED.areas_to_improve,
		     recommendations = EXCLUDED.recommendations,
		     overall_score = EXCLUDED.overall_score,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		s.ID, s.RoomID, s.ProfessorID, s.Status, s.Summary, nonNil(s.KeyTopics), nonNil(s.Strengths),
		nonNil(s.AreasToImprove), nonNil(s.Recommendations), s.OverallScore,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// CreatePending drafts an empty summary unless the room already has one.
// It reports whether a row was inserted.
func (r *SummaryRepository) CreatePending(ctx context.Context, roomID, professorID uuid.UUID) (bool, error) {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO session_summaries (id, room_id, professor_id, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (room_id) DO NOTHING`,
		uuid.New(), roomID, professorID, model.SummaryStatusPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetByRoom retrieves the summary of a room.
func (r *SummaryRepository) GetByRoom(ctx context.Context, roomID uuid.UUID) (*model.SessionSummary, error) {
	return scanSummary(database.Conn(ctx, r.pool).QueryRow(ctx, summarySelect+` WHERE ss.room_id = $1`, roomID))
}

// ListByProfessor returns a professor's summaries including drafts, newest first.
func (r *SummaryRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.SessionSummary, error) {
	return r.list(ctx, summarySelect+` WHERE ss.professor_id = $1 ORDER BY ss.created_at DESC`, professorID)
}

// ListForStudent returns published summaries of rooms the student participates in.
func (r *SummaryRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]model.SessionSummary, error) {
	return r.list(ctx, summarySelect+`
		 JOIN room_participants rp ON rp.room_id = ss.room_id
		 WHERE rp.student_id = $1 AND ss.status = $2
		 ORDER BY ss.created_at DESC`, studentID, model.SummaryStatusPublished)
}

func (r *SummaryRepository) list(ctx context.Context, query string, args ...any) ([]model.SessionSummary, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.SessionSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}
