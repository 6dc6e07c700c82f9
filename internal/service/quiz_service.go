package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuizService authors quizzes, gates publication and grades one-shot submissions.
type QuizService struct {
	tx      Transactor
	quizzes QuizStore
	results QuizResultStore
	rooms   RoomStore
	users   UserStore
	log     zerolog.Logger
	now     func() time.Time
}

// NewQuizService creates a new QuizService.
func NewQuizService(tx Transactor, quizzes QuizStore, results QuizResultStore, rooms RoomStore, users UserStore, log zerolog.Logger) *QuizService {
	return &QuizService{
		tx:      tx,
		quizzes: quizzes,
		results: results,
		rooms:   rooms,
		users:   users,
		log:     log.With().Str("component", "quiz_service").Logger(),
		now:     time.Now,
	}
}

// Grade scores answers against questions. passed requires at least one question.
func Grade(questions []model.QuizQuestion, answers []model.SubmittedAnswer, passingScore int) (score int, graded []model.QuizAnswer, passed bool, err error) {
	byID := make(map[uuid.UUID]*model.QuizQuestion, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[uuid.UUID]struct{}, len(answers))
	graded = make([]model.QuizAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return 0, nil, false, notFound("question " + a.QuestionID.String())
		}
		if _, dup := seen[a.QuestionID]; dup {
			return 0, nil, false, ErrQuizDuplicateAnswer
		}
		seen[a.QuestionID] = struct{}{}

		correct := q.CorrectAnswer != nil && *q.CorrectAnswer == a.SelectedAnswer
		if correct {
			score++
		}
		graded = append(graded, model.QuizAnswer{
			ID:             uuid.New(),
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      correct,
		})
	}

	total := len(questions)
	passed = total > 0 && score*100 >= passingScore*total
	return score, graded, passed, nil
}

// Create authors a quiz for the calling professor.
func (s *QuizService) Create(ctx context.Context, professorUserID uuid.UUID, req *model.CreateQuizRequest) (*model.Quiz, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	if req.SessionID != nil {
		if _, err := s.rooms.GetByID(ctx, *req.SessionID); err != nil {
			return nil, lookupErr(err, "session")
		}
	}

	quiz := &model.Quiz{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Language:     req.Language,
		SessionID:    req.SessionID,
		TimeLimit:    req.TimeLimit,
		PassingScore: model.DefaultPassingScore,
		CreatedBy:    prof.ID,
		CreatorName:  prof.Name,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}

	quiz.Questions = make([]model.QuizQuestion, 0, len(req.Questions))
	for i, qr := range req.Questions {
		if qr.CorrectAnswer < 0 || qr.CorrectAnswer >= len(qr.Options) {
			return nil, ErrInvalidQuizQuestion
		}
		answer := qr.CorrectAnswer
		points := 1
		if qr.Points != nil {
			points = *qr.Points
		}
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			ID:            uuid.New(),
			QuizID:        quiz.ID,
			Question:      qr.Question,
			Options:       qr.Options,
			CorrectAnswer: &answer,
			Points:        points,
			OrderIndex:    i,
		})
	}
	quiz.QuestionCount = len(quiz.Questions)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.quizzes.Create(ctx, quiz)
	})
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// List returns a filtered page of quizzes.
func (s *QuizService) List(ctx context.Context, f model.QuizFilter) ([]model.Quiz, int, error) {
	list, total, err := s.quizzes.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	return list, total, nil
}

// GetByID returns a quiz with its questions. Students only see published quizzes, without answers.
func (s *QuizService) GetByID(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "quiz")
	}
	switch caller.Role {
	case model.RoleAdmin, model.RoleProfessor:
		return quiz, nil
	case model.RoleStudent:
		if !quiz.IsPublished {
			return nil, ErrQuizHiddenForStudent
		}
		return quiz.WithoutAnswers(), nil
	default:
		return nil, fmt.Errorf("unknown role %q", caller.Role)
	}
}

// Publish makes a quiz available to students. Publishing again is a no-op.
func (s *QuizService) Publish(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "quiz")
	}
	if err := s.authorizeAuthor(ctx, quiz, caller); err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizNoQuestions
	}
	if err := s.quizzes.SetPublished(ctx, id); err != nil {
		return nil, fmt.Errorf("publish quiz: %w", err)
	}
	quiz.IsPublished = true
	return quiz, nil
}

// Submit grades the calling student's single submission.
func (s *QuizService) Submit(ctx context.Context, studentUserID, quizID uuid.UUID, answers []model.SubmittedAnswer) (*model.QuizResult, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, lookupErr(err, "quiz")
	}
	if !quiz.IsPublished {
		return nil, ErrQuizNotPublished
	}
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}

	taken, err := s.results.Exists(ctx, quizID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check previous result: %w", err)
	}
	if taken {
		return nil, ErrQuizAlreadyTaken
	}

	score, graded, passed, err := Grade(quiz.Questions, answers, quiz.PassingScore)
	if err != nil {
		return nil, err
	}

	result := &model.QuizResult{
		ID:             uuid.New(),
		QuizID:         quizID,
		QuizTitle:      quiz.Title,
		StudentID:      student.ID,
		StudentName:    student.Name,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Passed:         passed,
		CompletedAt:    s.now(),
		Answers:        graded,
	}
	for i := range result.Answers {
		result.Answers[i].ResultID = result.ID
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.results.Create(ctx, result)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrQuizAlreadyTaken
	}
	if err != nil {
		return nil, fmt.Errorf("save quiz result: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Str("student_id", student.ID.String()).
		Int("score", score).
		Int("total", result.TotalQuestions).
		Bool("passed", passed).
		Msg("Quiz submitted")
	return result, nil
}

// Results lists every result of one quiz.
func (s *QuizService) Results(ctx context.Context, caller model.Principal, quizID uuid.UUID) ([]model.QuizResult, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, lookupErr(err, "quiz")
	}
	if err := s.authorizeAuthor(ctx, quiz, caller); err != nil {
		return nil, err
	}
	list, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return list, nil
}

// StudentResults lists results of one student. Students may only read their own.
func (s *QuizService) StudentResults(ctx context.Context, caller model.Principal, studentID *uuid.UUID) ([]model.QuizResult, error) {
	var target uuid.UUID
	switch caller.Role {
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, lookupErr(err, "student")
		}
		if studentID != nil && *studentID != student.ID {
			return nil, newError(ErrUnauthorized, "students may only read their own results")
		}
		target = student.ID
	case model.RoleProfessor, model.RoleAdmin:
		if studentID == nil {
			return nil, invalidState("student id is required")
		}
		if _, err := s.users.GetStudentByID(ctx, *studentID); err != nil {
			return nil, lookupErr(err, "student")
		}
		target = *studentID
	default:
		return nil, fmt.Errorf("unknown role %q", caller.Role)
	}

	list, err := s.results.ListByStudent(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return list, nil
}

// Delete removes a quiz with its questions, results and answers.
func (s *QuizService) Delete(ctx context.Context, caller model.Principal, id uuid.UUID) error {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "quiz")
	}
	if err := s.authorizeAuthor(ctx, quiz, caller); err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.quizzes.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

func (s *QuizService) authorizeAuthor(ctx context.Context, quiz *model.Quiz, caller model.Principal) error {
	switch caller.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleProfessor:
		prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
		if err != nil {
			return lookupErr(err, "professor")
		}
		if quiz.CreatedBy != prof.ID {
			return ErrNotQuizOwner
		}
		return nil
	case model.RoleStudent:
		return ErrNotQuizOwner
	default:
		return fmt.Errorf("unknown role %q", caller.Role)
	}
}
