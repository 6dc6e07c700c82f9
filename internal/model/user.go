package model

import (
	"time"

	"github.com/google/uuid"
)

// LanguageLevel is a CEFR proficiency level.
type LanguageLevel string

const (
	LevelA1 LanguageLevel = "A1"
	LevelA2 LanguageLevel = "A2"
	LevelB1 LanguageLevel = "B1"
	LevelB2 LanguageLevel = "B2"
	LevelC1 LanguageLevel = "C1"
	LevelC2 LanguageLevel = "C2"
)

// Valid reports whether l is one of the six CEFR levels.
func (l LanguageLevel) Valid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	}
	return false
}

// User is the base account shared by every role.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Avatar       *string    `json:"avatar,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Student is the student profile linked 1:1 to a User.
type Student struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	Name          string        `json:"name"`
	Email         *string       `json:"email,omitempty"`
	Avatar        *string       `json:"avatar,omitempty"`
	Nickname      string        `json:"nickname,omitempty"`
	Bio           string        `json:"bio,omitempty"`
	Level         LanguageLevel `json:"level"`
	UniqueCode    string        `json:"unique_code"`
	TotalSessions int           `json:"total_sessions"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Professor is the professor profile linked 1:1 to a User.
type Professor struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	Avatar         *string   `json:"avatar,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Languages      []string  `json:"languages"`
	Specialization string    `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileFilter narrows student and professor listings.
type ProfileFilter struct {
	CreatedBy *uuid.UUID
	Page      int
	PerPage   int
}

// Principal is the authenticated caller as resolved from the JWT.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Name   string
}

// LoginRequest accepts either an email or a student's unique code as username.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
}

// RegisterStudentRequest registers a student with a STUDENT access token.
type RegisterStudentRequest struct {
	AccessToken string        `json:"access_token" binding:"required"`
	Name        string        `json:"name" binding:"required,min=2,max=255"`
	Email       string        `json:"email" binding:"omitempty,email"`
	Password    string        `json:"password" binding:"required,min=6"`
	Nickname    string        `json:"nickname" binding:"omitempty,max=100"`
	Level       LanguageLevel `json:"level" binding:"omitempty,language_level"`
}

// RegisterProfessorRequest registers a professor with a PROFESSOR access token.
type RegisterProfessorRequest struct {
	AccessToken    string   `json:"access_token" binding:"required"`
	Name           string   `json:"name" binding:"required,min=2,max=255"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=6"`
	Bio            string   `json:"bio" binding:"omitempty,max=2000"`
	Languages      []string `json:"languages" binding:"omitempty,dive,min=2,max=50"`
	Specialization string   `json:"specialization" binding:"omitempty,max=255"`
}

// RegisterAdminRequest registers an admin with an ADMIN access token.
type RegisterAdminRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

// AuthResult is returned after a successful login or registration.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// CreateStudentRequest is an admin creating a student account directly.
type CreateStudentRequest struct {
	Name     string        `json:"name" binding:"required,min=2,max=255"`
	Email    string        `json:"email" binding:"omitempty,email"`
	Password string        `json:"password" binding:"required,min=6"`
	Nickname string        `json:"nickname" binding:"omitempty,max=100"`
	Bio      string        `json:"bio" binding:"omitempty,max=2000"`
	Level    LanguageLevel `json:"level" binding:"omitempty,language_level"`
}

// UpdateStudentRequest changes a student's profile. Nil fields are left as is.
type UpdateStudentRequest struct {
	Name     *string        `json:"name" binding:"omitempty,min=2,max=255"`
	Avatar   *string        `json:"avatar" binding:"omitempty,max=2048"`
	Nickname *string        `json:"nickname" binding:"omitempty,max=100"`
	Bio      *string        `json:"bio" binding:"omitempty,max=2000"`
	Level    *LanguageLevel `json:"level" binding:"omitempty,language_level"`
}

// CreateProfessorRequest is an admin creating a professor account directly.
type CreateProfessorRequest struct {
	Name           string   `json:"name" binding:"required,min=2,max=255"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=6"`
	Bio            string   `json:"bio" binding:"omitempty,max=2000"`
	Languages      []string `json:"languages" binding:"omitempty,dive,min=2,max=50"`
	Specialization string   `json:"specialization" binding:"omitempty,max=255"`
}

// UpdateProfessorRequest changes a professor's profile. Nil fields are left as is.
type UpdateProfessorRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=2,max=255"`
	Avatar         *string  `json:"avatar" binding:"omitempty,max=2048"`
	Bio            *string  `json:"bio" binding:"omitempty,max=2000"`
	Languages      []string `json:"languages" binding:"omitempty,dive,min=2,max=50"`
	Specialization *string  `json:"specialization" binding:"omitempty,max=255"`
}

// BatchStudentsRequest fetches several students at once.
type BatchStudentsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}
