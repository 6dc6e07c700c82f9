package handler

import (
	"net/http"
	"strconv"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ChallengeHandler serves professor authoring and student answering of challenges.
type ChallengeHandler struct {
	challenges *service.ChallengeService
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(challenges *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges}
}

// Create godoc
// POST /api/v1/challenges
func (h *ChallengeHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateChallengeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ch, err := h.challenges.Create(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"challenge": ch})
}

// Mine godoc
// GET /api/v1/challenges/mine
func (h *ChallengeHandler) Mine(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	list, err := h.challenges.MyChallenges(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"challenges": list})
}

// Delete godoc
// DELETE /api/v1/challenges/:id
func (h *ChallengeHandler) Delete(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.challenges.Delete(c.Request.Context(), caller.UserID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Stats godoc
// GET /api/v1/challenges/stats
func (h *ChallengeHandler) Stats(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	stats, err := h.challenges.Stats(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Attempts godoc
// GET /api/v1/challenges/:id/attempts
// Owner only, best scores first.
func (h *ChallengeHandler) Attempts(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	attempts, err := h.challenges.Attempts(c.Request.Context(), caller.UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// Active godoc
// GET /api/v1/challenges/active
// Open challenges for the calling student, without their answers.
func (h *ChallengeHandler) Active(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	list, err := h.challenges.ActiveList(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"challenges": list})
}

// Submit godoc
// POST /api/v1/challenges/:id/answer
func (h *ChallengeHandler) Submit(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitChallengeAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.challenges.SubmitAnswer(c.Request.Context(), caller.UserID, id, *req.SelectedAnswer)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// MyAttempts godoc
// GET /api/v1/challenges/attempts/mine
func (h *ChallengeHandler) MyAttempts(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	attempts, err := h.challenges.MyAttempts(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// Leaderboard godoc
// GET /api/v1/challenges/leaderboard?limit=50
func (h *ChallengeHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > 200 {
		limit = 200
	}

	entries, err := h.challenges.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
