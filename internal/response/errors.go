package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAccountDisabled    ErrCode = "ACCOUNT_DISABLED"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrInvalidAccessToken ErrCode = "INVALID_ACCESS_TOKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrRoleNotAllowed    ErrCode = "ROLE_NOT_ALLOWED"
	ErrNotRoomProfessor  ErrCode = "NOT_ROOM_PROFESSOR"
	ErrNotInvited        ErrCode = "NOT_INVITED"
	ErrNotResourceAuthor ErrCode = "NOT_RESOURCE_AUTHOR"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrConflict     ErrCode = "CONFLICT"
	ErrInvalidState ErrCode = "INVALID_STATE"

	// ─── Rooms ─────────────────────────────────────────────────────────
	ErrRoomTooEarly       ErrCode = "ROOM_TOO_EARLY"
	ErrRoomAlreadyStarted ErrCode = "ROOM_ALREADY_STARTED"
	ErrRoomNotLive        ErrCode = "ROOM_NOT_LIVE"
	ErrRoomCompleted      ErrCode = "ROOM_COMPLETED"

	// ─── Challenges and quizzes ────────────────────────────────────────
	ErrChallengeInactive  ErrCode = "CHALLENGE_INACTIVE"
	ErrMaxAttemptsReached ErrCode = "MAX_ATTEMPTS_REACHED"
	ErrAlreadyAnswered    ErrCode = "ALREADY_ANSWERED"
	ErrQuizNotPublished   ErrCode = "QUIZ_NOT_PUBLISHED"
	ErrQuizAlreadyTaken   ErrCode = "QUIZ_ALREADY_TAKEN"

	// ─── Video provider ────────────────────────────────────────────────
	ErrProviderUnavailable ErrCode = "PROVIDER_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrAccountDisabled:
		return "This account is disabled."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrInvalidAccessToken:
		return "The access code is invalid, expired or already used."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You are not allowed to access this resource."
	case ErrRoleNotAllowed:
		return "Your role cannot access this resource."
	case ErrNotRoomProfessor:
		return "You are not the professor of this room."
	case ErrNotInvited:
		return "You are not invited to this room."
	case ErrNotResourceAuthor:
		return "You are not the author of this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrInvalidState:
		return "This action is not allowed in the current state."

	// ─── Rooms ─────────────────────────────────────────────────────────
	case ErrRoomTooEarly:
		return "It is too early to join or start this room."
	case ErrRoomAlreadyStarted:
		return "This room has already started."
	case ErrRoomNotLive:
		return "This room is not live."
	case ErrRoomCompleted:
		return "This room is completed."

	// ─── Challenges and quizzes ────────────────────────────────────────
	case ErrChallengeInactive:
		return "This challenge is no longer active."
	case ErrMaxAttemptsReached:
		return "Maximum attempts reached."
	case ErrAlreadyAnswered:
		return "This challenge was already answered."
	case ErrQuizNotPublished:
		return "This quiz is not published."
	case ErrQuizAlreadyTaken:
		return "You have already taken this quiz."

	// ─── Video provider ────────────────────────────────────────────────
	case ErrProviderUnavailable:
		return "The video service is unavailable. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
