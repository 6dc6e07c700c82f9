package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/easylearn/easylearn-backend/internal/middleware"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// specificCodes gives well-known business errors their own code and status.
// Order matters: the first match wins.
var specificCodes = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrAccountDisabled, http.StatusUnauthorized, response.ErrAccountDisabled},
	{service.ErrSessionInvalidated, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrInvalidAccessToken, http.StatusBadRequest, response.ErrInvalidAccessToken},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrConflict},
	{service.ErrRoomTooEarly, http.StatusBadRequest, response.ErrRoomTooEarly},
	{service.ErrRoomAlreadyStarted, http.StatusBadRequest, response.ErrRoomAlreadyStarted},
	{service.ErrRoomNotLive, http.StatusBadRequest, response.ErrRoomNotLive},
	{service.ErrRoomCompleted, http.StatusBadRequest, response.ErrRoomCompleted},
	{service.ErrNotAssignedProfessor, http.StatusForbidden, response.ErrNotRoomProfessor},
	{service.ErrNotInvited, http.StatusForbidden, response.ErrNotInvited},
	{service.ErrNotChallengeOwner, http.StatusForbidden, response.ErrNotResourceAuthor},
	{service.ErrNotQuizOwner, http.StatusForbidden, response.ErrNotResourceAuthor},
	{service.ErrChallengeInactive, http.StatusBadRequest, response.ErrChallengeInactive},
	{service.ErrMaxAttemptsReached, http.StatusBadRequest, response.ErrMaxAttemptsReached},
	{service.ErrChallengeSolved, http.StatusConflict, response.ErrAlreadyAnswered},
	{service.ErrChallengeAnswered, http.StatusConflict, response.ErrAlreadyAnswered},
	{service.ErrQuizNotPublished, http.StatusBadRequest, response.ErrQuizNotPublished},
	{service.ErrQuizAlreadyTaken, http.StatusConflict, response.ErrQuizAlreadyTaken},
}

// respondError maps a service error onto the envelope. Business errors carry
// their reason as the message. Anything unrecognized is attached to the
// context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	for _, m := range specificCodes {
		if errors.Is(err, m.err) {
			response.FailWithMessage(c, m.status, m.code, service.Reason(err))
			return
		}
	}

	reason := service.Reason(err)
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.FailWithMessage(c, http.StatusNotFound, response.ErrNotFound, reason)
	case errors.Is(err, service.ErrInvalidState):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidState, reason)
	case errors.Is(err, service.ErrUnauthorized):
		response.FailWithMessage(c, http.StatusForbidden, response.ErrForbidden, reason)
	case errors.Is(err, service.ErrProviderFailure):
		_ = c.Error(err)
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrProviderUnavailable, reason)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// principal fetches the caller or writes a 401.
func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	}
	return p, ok
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional query parameter. A malformed value writes a 400.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{name: "must be a UUID"})
		return nil, false
	}
	return &id, true
}

func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
