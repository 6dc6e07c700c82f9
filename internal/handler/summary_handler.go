package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// SummaryHandler handles post-session summaries.
type SummaryHandler struct {
	summaries *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaries *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Upsert godoc
// PUT /api/v1/summaries
// Writes (or rewrites) the summary of a room and publishes it.
func (h *SummaryHandler) Upsert(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.UpsertSummaryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sum, err := h.summaries.CreateOrUpdate(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": sum})
}

// ByRoom godoc
// GET /api/v1/rooms/:id/summary
func (h *SummaryHandler) ByRoom(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	sum, err := h.summaries.GetByRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": sum})
}

// Mine godoc
// GET /api/v1/summaries/mine
// Professors see their drafts too; students see published summaries of their rooms.
func (h *SummaryHandler) Mine(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var (
		list []model.SessionSummary
		err  error
	)
	switch caller.Role {
	case model.RoleProfessor:
		list, err = h.summaries.ByProfessor(c.Request.Context(), caller.UserID)
	case model.RoleStudent:
		list, err = h.summaries.ForStudent(c.Request.Context(), caller.UserID)
	default:
		response.Fail(c, http.StatusForbidden, response.ErrRoleNotAllowed)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summaries": list})
}
