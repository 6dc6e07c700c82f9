package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Error kinds. Every business error wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrProviderFailure = errors.New("video provider failure")
)

// Error is a business-rule failure with a kind, a human-readable reason and an optional cause.
type Error struct {
	Kind   error
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func notFound(entity string) *Error {
	return newError(ErrNotFound, entity+" not found")
}

func invalidState(format string, args ...any) *Error {
	return newError(ErrInvalidState, fmt.Sprintf(format, args...))
}

func providerFailure(reason string, err error) *Error {
	return &Error{Kind: ErrProviderFailure, Reason: reason, Err: err}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// lookupErr maps a missing row to NotFound for entity and wraps anything else.
func lookupErr(err error, entity string) error {
	if isNoRows(err) {
		return notFound(entity)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

// Reason returns the human-readable message of a business error, or "" if err is not one.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Auth.
var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid credentials")
	ErrAccountDisabled    = newError(ErrUnauthorized, "account is disabled")
	ErrSessionInvalidated = newError(ErrUnauthorized, "session invalidated")
	ErrInvalidAccessToken = newError(ErrInvalidState, "access token is invalid, expired or already used")
	ErrEmailTaken         = newError(ErrInvalidState, "email is already registered")
)

// Rooms.
var (
	ErrRoomAlreadyStarted   = newError(ErrInvalidState, "room is already live or completed")
	ErrRoomTooEarly         = newError(ErrInvalidState, "too early to join or start this room")
	ErrRoomNotLive          = newError(ErrInvalidState, "room is not live")
	ErrRoomCompleted        = newError(ErrInvalidState, "room is completed")
	ErrNotAssignedProfessor = newError(ErrUnauthorized, "you are not the professor of this room")
	ErrNotInvited           = newError(ErrUnauthorized, "you are not invited to this room")
	ErrRoomNoProfessor      = newError(ErrInvalidState, "room has no assigned professor")
)

// Challenges.
var (
	ErrChallengeInactive       = newError(ErrInvalidState, "challenge is no longer active")
	ErrChallengeSolved         = newError(ErrInvalidState, "challenge already answered correctly")
	ErrMaxAttemptsReached      = newError(ErrInvalidState, "maximum attempts reached")
	ErrChallengeAnswered       = newError(ErrInvalidState, "challenge was already answered")
	ErrInvalidChallengeOptions = newError(ErrInvalidState, "challenge must have exactly 4 options and a correct answer between 0 and 3")
	ErrInvalidBasePoints       = newError(ErrInvalidState, "base points must be between 10 and 200")
	ErrInvalidChallengeExpiry  = newError(ErrInvalidState, "challenge must expire within 1 to 168 hours")
	ErrNotChallengeOwner       = newError(ErrUnauthorized, "you are not the author of this challenge")
)

// Quizzes.
var (
	ErrQuizNoQuestions      = newError(ErrInvalidState, "cannot publish quiz without questions")
	ErrQuizNotPublished     = newError(ErrInvalidState, "quiz is not published")
	ErrQuizAlreadyTaken     = newError(ErrInvalidState, "quiz already taken")
	ErrQuizDuplicateAnswer  = newError(ErrInvalidState, "a question was answered more than once")
	ErrInvalidQuizQuestion  = newError(ErrInvalidState, "correct answer must index one of the options")
	ErrNotQuizOwner         = newError(ErrUnauthorized, "you are not the author of this quiz")
	ErrQuizHiddenForStudent = newError(ErrNotFound, "quiz not found")
)
