package repository

import (
	"context"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EvaluationRepository handles evaluation persistence.
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

const evaluationSelect = `SELECT e.id, e.student_id, su.name, e.professor_id, pu.name, e.language,
		e.pronunciation, e.grammar, e.vocabulary, e.fluency, e.overall_score, e.assigned_level,
		e.feedback, e.strengths, e.areas_to_improve, e.created_at
	 FROM evaluations e
	 JOIN students s ON s.id = e.student_id
	 JOIN users su ON su.id = s.user_id
	 JOIN professors p ON p.id = e.professor_id
	 JOIN users pu ON pu.id = p.user_id`

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, e *model.Evaluation) error {
	return database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO evaluations (id, student_id, professor_id, language, pronunciation, grammar, vocabulary, fluency,
		                          overall_score, assigned_level, feedback, strengths, areas_to_improve)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at`,
		e.ID, e.StudentID, e.ProfessorID, e.Language, e.Pronunciation, e.Grammar, e.Vocabulary, e.Fluency,
		e.OverallScore, e.AssignedLevel, e.Feedback, nonNil(e.Strengths), nonNil(e.AreasToImprove),
	).Scan(&e.CreatedAt)
}

// ListByProfessor returns evaluations written by a professor, newest first.
func (r *EvaluationRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.Evaluation, error) {
	return r.list(ctx, evaluationSelect+` WHERE e.professor_id = $1 ORDER BY e.created_at DESC`, professorID)
}

// ListByStudent returns a student's evaluations, optionally for a single language.
func (r *EvaluationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, language string) ([]model.Evaluation, error) {
	if language == "" {
		return r.list(ctx, evaluationSelect+` WHERE e.student_id = $1 ORDER BY e.created_at DESC`, studentID)
	}
	return r.list(ctx, evaluationSelect+` WHERE e.student_id = $1 AND LOWER(e.language) = LOWER($2) ORDER BY e.created_at DESC`,
		studentID, language)
}

func (r *EvaluationRepository) list(ctx context.Context, query string, args ...any) ([]model.Evaluation, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := []model.Evaluation{}
	for rows.Next() {
		var e model.Evaluation
		err := rows.Scan(&e.ID, &e.StudentID, &e.StudentName, &e.ProfessorID, &e.ProfessorName, &e.Language,
			&e.Pronunciation, &e.Grammar, &e.Vocabulary, &e.Fluency, &e.OverallScore, &e.AssignedLevel,
			&e.Feedback, &e.Strengths, &e.AreasToImprove, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

// nonNil keeps NOT NULL text[] columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
