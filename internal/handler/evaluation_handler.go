package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// EvaluationHandler handles professor evaluations of students.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Create godoc
// POST /api/v1/evaluations
// Scores a student; an assigned level different from the current one is applied.
func (h *EvaluationHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateEvaluationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ev, err := h.evaluations.Create(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"evaluation": ev})
}

// Mine godoc
// GET /api/v1/evaluations/mine?language=French
// Professors get what they wrote, students what they received.
func (h *EvaluationHandler) Mine(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var (
		list []model.Evaluation
		err  error
	)
	switch caller.Role {
	case model.RoleProfessor:
		list, err = h.evaluations.ByProfessor(c.Request.Context(), caller.UserID)
	case model.RoleStudent:
		list, err = h.evaluations.ForStudent(c.Request.Context(), caller.UserID, c.Query("language"))
	default:
		response.Fail(c, http.StatusForbidden, response.ErrRoleNotAllowed)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evaluations": list})
}

// UpdateLevel godoc
// PUT /api/v1/students/:id/level
func (h *EvaluationHandler) UpdateLevel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateLevelRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.evaluations.UpdateStudentLevel(c.Request.Context(), id, req.Level); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student_id": id, "level": req.Level})
}
