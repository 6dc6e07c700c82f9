package service

import (
	"context"
	"fmt"
	"math"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EvaluationService records professors' skill assessments of students.
type EvaluationService struct {
	tx          Transactor
	evaluations EvaluationStore
	users       UserStore
	log         zerolog.Logger
}

// NewEvaluationService creates a new EvaluationService.
func NewEvaluationService(tx Transactor, evaluations EvaluationStore, users UserStore, log zerolog.Logger) *EvaluationService {
	return &EvaluationService{
		tx:          tx,
		evaluations: evaluations,
		users:       users,
		log:         log.With().Str("component", "evaluation_service").Logger(),
	}
}

// OverallScore is the rounded mean of the four skill scores.
func OverallScore(pronunciation, grammar, vocabulary, fluency int) int {
	return int(math.Round(float64(pronunciation+grammar+vocabulary+fluency) / 4.0))
}

// Create stores an evaluation and moves the student to the assigned level, if any.
func (s *EvaluationService) Create(ctx context.Context, professorUserID uuid.UUID, req *model.CreateEvaluationRequest) (*model.Evaluation, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}

	ev := &model.Evaluation{
		ID:             uuid.New(),
		StudentID:      req.StudentID,
		ProfessorID:    prof.ID,
		ProfessorName:  prof.Name,
		Language:       req.Language,
		Pronunciation:  req.Pronunciation,
		Grammar:        req.Grammar,
		Vocabulary:     req.Vocabulary,
		Fluency:        req.Fluency,
		OverallScore:   OverallScore(req.Pronunciation, req.Grammar, req.Vocabulary, req.Fluency),
		AssignedLevel:  req.AssignedLevel,
		Feedback:       req.Feedback,
		Strengths:      req.Strengths,
		AreasToImprove: req.AreasToImprove,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		student, err := s.users.GetStudentByID(ctx, req.StudentID)
		if err != nil {
			return lookupErr(err, "student")
		}
		ev.StudentName = student.Name

		if err := s.evaluations.Create(ctx, ev); err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}
		if ev.AssignedLevel != nil && *ev.AssignedLevel != student.Level {
			if err := s.users.UpdateStudentLevel(ctx, student.ID, *ev.AssignedLevel); err != nil {
				return fmt.Errorf("update student level: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// ByProfessor lists evaluations written by the calling professor.
func (s *EvaluationService) ByProfessor(ctx context.Context, professorUserID uuid.UUID) ([]model.Evaluation, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	list, err := s.evaluations.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return list, nil
}

// ForStudent lists the calling student's evaluations, optionally for one language.
func (s *EvaluationService) ForStudent(ctx context.Context, studentUserID uuid.UUID, language string) ([]model.Evaluation, error) {
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	list, err := s.evaluations.ListByStudent(ctx, student.ID, language)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return list, nil
}

// UpdateStudentLevel sets a student's level directly.
func (s *EvaluationService) UpdateStudentLevel(ctx context.Context, studentID uuid.UUID, level model.LanguageLevel) error {
	if _, err := s.users.GetStudentByID(ctx, studentID); err != nil {
		return lookupErr(err, "student")
	}
	if err := s.users.UpdateStudentLevel(ctx, studentID, level); err != nil {
		return fmt.Errorf("update student level: %w", err)
	}
	return nil
}
