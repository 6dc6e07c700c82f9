package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizRepository handles quizzes and their questions.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizSelect = `SELECT q.id, q.title, q.description, q.language, q.session_id, q.time_limit, q.passing_score,
		q.is_published, q.created_by, u.name,
		(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id),
		q.created_at, q.updated_at
	 FROM quizzes q
	 JOIN professors p ON p.id = q.created_by
	 JOIN users u ON u.id = p.user_id`

func scanQuiz(row interface{ Scan(...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Language, &q.SessionID, &q.TimeLimit, &q.PassingScore,
		&q.IsPublished, &q.CreatedBy, &q.CreatorName, &q.QuestionCount, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts the quiz and all of its questions. Call it inside a transaction.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	conn := database.Conn(ctx, r.pool)
	err := conn.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, description, language, session_id, time_limit, passing_score, is_published, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		q.ID, q.Title, q.Description, q.Language, q.SessionID, q.TimeLimit, q.PassingScore, q.IsPublished, q.CreatedBy,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	for _, qq := range q.Questions {
		_, err := conn.Exec(ctx,
			`INSERT INTO quiz_questions (id, quiz_id, question, options, correct_answer, points, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			qq.ID, q.ID, qq.Question, qq.Options, qq.CorrectAnswer, qq.Points, qq.OrderIndex,
		)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

// GetByID retrieves a quiz with its questions in order.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	conn := database.Conn(ctx, r.pool)
	q, err := scanQuiz(conn.QueryRow(ctx, quizSelect+` WHERE q.id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx,
		`SELECT id, quiz_id, question, options, correct_answer, points, order_index
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	q.Questions = []model.QuizQuestion{}
	for rows.Next() {
		var qq model.QuizQuestion
		if err := rows.Scan(&qq.ID, &qq.QuizID, &qq.Question, &qq.Options, &qq.CorrectAnswer, &qq.Points, &qq.OrderIndex); err != nil {
			return nil, err
		}
		q.Questions = append(q.Questions, qq)
	}
	return q, rows.Err()
}

// SetPublished marks a quiz as published.
func (r *QuizRepository) SetPublished(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE quizzes SET is_published = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// Delete removes a quiz. Questions, results and answers cascade.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

// List returns a page of quizzes without their questions, newest first.
func (r *QuizRepository) List(ctx context.Context, f model.QuizFilter) ([]model.Quiz, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.SessionID != nil {
		where = append(where, "q.session_id = "+arg(*f.SessionID))
	}
	if f.Language != "" {
		where = append(where, "LOWER(q.language) = LOWER("+arg(f.Language)+")")
	}
	if f.IsPublished != nil {
		where = append(where, "q.is_published = "+arg(*f.IsPublished))
	}
	if f.CreatedBy != nil {
		where = append(where, "q.created_by = "+arg(*f.CreatedBy))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		where = append(where, "(q.title ILIKE "+p+" OR q.description ILIKE "+p+")")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	conn := database.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes q`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	query := quizSelect + clause + " ORDER BY q.created_at DESC LIMIT " + arg(perPage) + " OFFSET " + arg((page-1)*perPage)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, total, rows.Err()
}
