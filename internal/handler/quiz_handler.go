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

// QuizHandler handles quiz authoring, taking and results.
type QuizHandler struct {
	quizzes *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Create godoc
// POST /api/v1/quizzes
// Creates an unpublished quiz with its questions.
func (h *QuizHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizzes.Create(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"quiz": quiz})
}

// List godoc
// GET /api/v1/quizzes?session_id=&language=&published=&created_by=&search=&page=&per_page=
// Students only ever see published quizzes.
func (h *QuizHandler) List(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	page, perPage := pageParams(c)
	f := model.QuizFilter{
		Language: c.Query("language"),
		Search:   c.Query("search"),
		Page:     page,
		PerPage:  perPage,
	}
	if f.SessionID, ok = optionalUUIDQuery(c, "session_id"); !ok {
		return
	}
	if f.CreatedBy, ok = optionalUUIDQuery(c, "created_by"); !ok {
		return
	}
	if raw := c.Query("published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"published": "must be true or false"})
			return
		}
		f.IsPublished = &published
	}
	if caller.Role == model.RoleStudent {
		published := true
		f.IsPublished = &published
	}

	quizzes, total, err := h.quizzes.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/quizzes/:id
func (h *QuizHandler) Get(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Publish godoc
// POST /api/v1/quizzes/:id/publish
func (h *QuizHandler) Publish(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.Publish(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Submit godoc
// POST /api/v1/quizzes/:id/submit
// One submission per student. The result is graded on the spot.
func (h *QuizHandler) Submit(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizzes.Submit(c.Request.Context(), caller.UserID, id, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"result": result})
}

// Results godoc
// GET /api/v1/quizzes/:id/results
func (h *QuizHandler) Results(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	results, err := h.quizzes.Results(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// StudentResults godoc
// GET /api/v1/quizzes/results?student_id=
// Students always get their own results; staff may name a student.
func (h *QuizHandler) StudentResults(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	studentID, ok := optionalUUIDQuery(c, "student_id")
	if !ok {
		return
	}

	results, err := h.quizzes.StudentResults(c.Request.Context(), caller, studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Delete godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
