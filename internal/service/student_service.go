package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StudentService handles student profile management.
type StudentService struct {
	tx    Transactor
	users UserStore
	log   zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(tx Transactor, users UserStore, log zerolog.Logger) *StudentService {
	return &StudentService{
		tx:    tx,
		users: users,
		log:   log.With().Str("component", "student_service").Logger(),
	}
}

// Me returns the calling student's profile.
func (s *StudentService) Me(ctx context.Context, caller model.Principal) (*model.Student, error) {
	student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	return student, nil
}

// Get retrieves a student by profile ID.
func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.users.GetStudentByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	return student, nil
}

// List returns a page of students, newest first.
func (s *StudentService) List(ctx context.Context, f model.ProfileFilter) ([]model.Student, int, error) {
	list, total, err := s.users.ListStudents(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return list, total, nil
}

// ByIDs returns the students among ids that exist. Unknown IDs are skipped.
func (s *StudentService) ByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Student, error) {
	list, err := s.users.StudentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("batch students: %w", err)
	}
	return list, nil
}

// Update changes a student's profile. Admins may edit anyone; a student only
// themselves, and never their own level.
func (s *StudentService) Update(ctx context.Context, caller model.Principal, id uuid.UUID, req *model.UpdateStudentRequest) (*model.Student, error) {
	var updated *model.Student
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		student, err := s.users.GetStudentByID(ctx, id)
		if err != nil {
			return lookupErr(err, "student")
		}
		if caller.Role != model.RoleAdmin {
			if student.UserID != caller.UserID {
				return newError(ErrUnauthorized, "you can only edit your own profile")
			}
			if req.Level != nil && *req.Level != student.Level {
				return newError(ErrUnauthorized, "students cannot change their own level")
			}
		}

		user, err := s.users.GetUserByID(ctx, student.UserID)
		if err != nil {
			return lookupErr(err, "user")
		}
		if applyAccountChanges(user, req.Name, req.Avatar) {
			if err := s.users.UpdateUser(ctx, user); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			student.Name, student.Avatar = user.Name, user.Avatar
		}

		if req.Nickname != nil {
			student.Nickname = *req.Nickname
		}
		if req.Bio != nil {
			student.Bio = *req.Bio
		}
		if req.Level != nil {
			student.Level = *req.Level
		}
		if err := s.users.UpdateStudent(ctx, student); err != nil {
			return fmt.Errorf("update student: %w", err)
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a student and their account. Attempts, results and
// participations go with them.
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.users.GetStudentByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	if err := s.users.DeleteUser(ctx, student.UserID); err != nil {
		return nil, fmt.Errorf("delete student: %w", err)
	}
	s.log.Info().Str("student_id", id.String()).Str("user_id", student.UserID.String()).Msg("Student deleted")
	return student, nil
}

// applyAccountChanges copies the non-nil fields onto u and reports whether anything changed.
func applyAccountChanges(u *model.User, name, avatar *string) bool {
	changed := false
	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != u.Name {
			u.Name = trimmed
			changed = true
		}
	}
	if avatar != nil {
		u.Avatar = avatar
		if *avatar == "" {
			u.Avatar = nil
		}
		changed = true
	}
	return changed
}
