package service

import (
	"context"
	"fmt"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfessorService handles professor profile management.
type ProfessorService struct {
	tx    Transactor
	users UserStore
	log   zerolog.Logger
}

// NewProfessorService creates a new ProfessorService.
func NewProfessorService(tx Transactor, users UserStore, log zerolog.Logger) *ProfessorService {
	return &ProfessorService{
		tx:    tx,
		users: users,
		log:   log.With().Str("component", "professor_service").Logger(),
	}
}

// Me returns the calling professor's profile.
func (s *ProfessorService) Me(ctx context.Context, caller model.Principal) (*model.Professor, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	return prof, nil
}

// Get retrieves a professor by profile ID.
func (s *ProfessorService) Get(ctx context.Context, id uuid.UUID) (*model.Professor, error) {
	prof, err := s.users.GetProfessorByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	return prof, nil
}

// List returns a page of professors, newest first, optionally only those
// created by one admin.
func (s *ProfessorService) List(ctx context.Context, f model.ProfileFilter) ([]model.Professor, int, error) {
	list, total, err := s.users.ListProfessors(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list professors: %w", err)
	}
	return list, total, nil
}

// Update changes a professor's profile. Admins may edit anyone; a professor only themselves.
func (s *ProfessorService) Update(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.UpdateProfessorRequest) (*model.Professor, error) {
	var updated *model.Professor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		prof, err := s.users.GetProfessorByID(ctx, id)
		if err != nil {
			return lookupErr(err, "professor")
		}
		if caller.Role != model.RoleAdmin && prof.UserID != caller.UserID {
			return newError(ErrUnauthorized, "you can only edit your own profile")
		}

		user, err := s.users.GetUserByID(ctx, prof.UserID)
		if err != nil {
			return lookupErr(err, "user")
		}
		if applyAccountChanges(user, req.Name, req.Avatar) {
			if err := s.users.UpdateUser(ctx, user); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			prof.Name, prof.Avatar = user.Name, user.Avatar
		}

		if req.Bio != nil {
			prof.Bio = *req.Bio
		}
		if req.Languages != nil {
			prof.Languages = req.Languages
		}
		if req.Specialization != nil {
			prof.Specialization = *req.Specialization
		}
		if err := s.users.UpdateProfessor(ctx, prof); err != nil {
			return fmt.Errorf("update professor: %w", err)
		}
		updated = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a professor and their account. Their challenges, quizzes and
// evaluations go with them; assigned rooms are left without a professor.
func (s *ProfessorService) Delete(ctx context.Context, id uuid.UUID) (*model.Professor, error) {
	prof, err := s.users.GetProfessorByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	if err := s.users.DeleteUser(ctx, prof.UserID); err != nil {
		return nil, fmt.Errorf("delete professor: %w", err)
	}
	s.log.Info().Str("professor_id", id.String()).Str("user_id", prof.UserID.String()).Msg("Professor deleted")
	return prof, nil
}
