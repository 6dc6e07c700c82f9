package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AccessTokenHandler lets admins mint and inspect registration tokens.
type AccessTokenHandler struct {
	tokens *service.AccessTokenService
}

// NewAccessTokenHandler creates a new AccessTokenHandler.
func NewAccessTokenHandler(tokens *service.AccessTokenService) *AccessTokenHandler {
	return &AccessTokenHandler{tokens: tokens}
}

// Generate godoc
// POST /api/v1/access-tokens
func (h *AccessTokenHandler) Generate(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.GenerateAccessTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.tokens.Generate(c.Request.Context(), req.Role, &caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"access_token": token})
}

// ListAvailable godoc
// GET /api/v1/access-tokens?role=STUDENT
// Lists unused, unexpired tokens, optionally for one role.
func (h *AccessTokenHandler) ListAvailable(c *gin.Context) {
	var role *model.Role
	if raw := c.Query("role"); raw != "" {
		r, err := model.ParseRole(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"role": err.Error()})
			return
		}
		role = &r
	}

	tokens, err := h.tokens.ListAvailable(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access_tokens": tokens})
}
