package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// StudentHandler handles student profiles and their admin-facing management.
type StudentHandler struct {
	students *service.StudentService
	auth     *service.AuthService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(students *service.StudentService, auth *service.AuthService) *StudentHandler {
	return &StudentHandler{students: students, auth: auth}
}

// Me godoc
// GET /api/v1/students/me
func (h *StudentHandler) Me(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	student, err := h.students.Me(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// Create godoc
// POST /api/v1/students
// Creates a student account directly; no access token is consumed.
func (h *StudentHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.auth.CreateStudent(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"student": student})
}

// Update godoc
// PUT /api/v1/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.students.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// Delete godoc
// DELETE /api/v1/students/:id
// Removes the student and ends their session.
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	student, err := h.students.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), student.UserID); err != nil {
		_ = c.Error(err)
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Get godoc
// GET /api/v1/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// List godoc
// GET /api/v1/students?page=1&per_page=20
func (h *StudentHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	students, total, err := h.students.List(c.Request.Context(), model.ProfileFilter{Page: page, PerPage: perPage})
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, response.NewPagination(page, perPage, total))
}

// Batch godoc
// POST /api/v1/students/batch
func (h *StudentHandler) Batch(c *gin.Context) {
	var req model.BatchStudentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	students, err := h.students.ByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}
