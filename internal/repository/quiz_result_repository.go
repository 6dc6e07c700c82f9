package repository

import (
	"context"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizResultRepository handles graded submissions.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

// NewQuizResultRepository creates a new QuizResultRepository.
func NewQuizResultRepository(pool *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{pool: pool}
}

const resultSelect = `SELECT r.id, r.quiz_id, q.title, r.student_id, u.name, r.score, r.total_questions, r.passed, r.completed_at
	 FROM quiz_results r
	 JOIN quizzes q ON q.id = r.quiz_id
	 JOIN students s ON s.id = r.student_id
	 JOIN users u ON u.id = s.user_id`

// Exists reports whether the student already has a result for the quiz.
func (r *QuizResultRepository) Exists(ctx context.Context, quizID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_results WHERE quiz_id = $1 AND student_id = $2)`,
		quizID, studentID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a result with its answers. A second result for the same
// (quiz, student) yields ErrDuplicate.
func (r *QuizResultRepository) Create(ctx context.Context, res *model.QuizResult) error {
	conn := database.Conn(ctx, r.pool)
	_, err := conn.Exec(ctx,
		`INSERT INTO quiz_results (id, quiz_id, student_id, score, total_questions, passed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.QuizID, res.StudentID, res.Score, res.TotalQuestions, res.Passed, res.CompletedAt,
	)
	if err != nil {
		return mapErr(err)
	}

	for _, a := range res.Answers {
		_, err := conn.Exec(ctx,
			`INSERT INTO quiz_answers (id, result_id, question_id, selected_answer, is_correct)
			 VALUES ($1, $2, $3, $4, $5)`,
			a.ID, res.ID, a.QuestionID, a.SelectedAnswer, a.IsCorrect,
		)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

// ListByQuiz returns every result of a quiz, best score first.
func (r *QuizResultRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.QuizResult, error) {
	return r.list(ctx, resultSelect+` WHERE r.quiz_id = $1 ORDER BY r.score DESC, r.completed_at`, quizID)
}

// ListByStudent returns a student's results, newest first.
func (r *QuizResultRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.QuizResult, error) {
	return r.list(ctx, resultSelect+` WHERE r.student_id = $1 ORDER BY r.completed_at DESC`, studentID)
}

func (r *QuizResultRepository) list(ctx context.Context, query string, args ...any) ([]model.QuizResult, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.QuizResult{}
	for rows.Next() {
		var res model.QuizResult
		err := rows.Scan(&res.ID, &res.QuizID, &res.QuizTitle, &res.StudentID, &res.StudentName,
			&res.Score, &res.TotalQuestions, &res.Passed, &res.CompletedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
