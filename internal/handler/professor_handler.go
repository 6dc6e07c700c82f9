package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ProfessorHandler handles professor profiles and their admin-facing management.
type ProfessorHandler struct {
	professors *service.ProfessorService
	auth       *service.AuthService
	rooms      *service.RoomService
}

// NewProfessorHandler creates a new ProfessorHandler.
func NewProfessorHandler(professors *service.ProfessorService, auth *service.AuthService, rooms *service.RoomService) *ProfessorHandler {
	return &ProfessorHandler{professors: professors, auth: auth, rooms: rooms}
}

// Me godoc
// GET /api/v1/professors/me
func (h *ProfessorHandler) Me(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	prof, err := h.professors.Me(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"professor": prof})
}

// Create godoc
// POST /api/v1/professors
func (h *ProfessorHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateProfessorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	prof, err := h.auth.CreateProfessor(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"professor": prof})
}

// Update godoc
// PUT /api/v1/professors/:id
func (h *ProfessorHandler) Update(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateProfessorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	prof, err := h.professors.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"professor": prof})
}

// Delete godoc
// DELETE /api/v1/professors/:id
func (h *ProfessorHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	prof, err := h.professors.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), prof.UserID); err != nil {
		_ = c.Error(err)
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Get godoc
// GET /api/v1/professors/:id
func (h *ProfessorHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	prof, err := h.professors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"professor": prof})
}

// List godoc
// GET /api/v1/professors?page=1&per_page=20
func (h *ProfessorHandler) List(c *gin.Context) {
	h.list(c, model.ProfileFilter{})
}

// CreatedBy godoc
// GET /api/v1/professors/created-by/:admin_id
func (h *ProfessorHandler) CreatedBy(c *gin.Context) {
	adminID, ok := uuidParam(c, "admin_id")
	if !ok {
		return
	}
	h.list(c, model.ProfileFilter{CreatedBy: &adminID})
}

func (h *ProfessorHandler) list(c *gin.Context, f model.ProfileFilter) {
	f.Page, f.PerPage = pageParams(c)

	profs, total, err := h.professors.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"professors": profs}, response.NewPagination(f.Page, f.PerPage, total))
}

// Sessions godoc
// GET /api/v1/professors/:id/sessions?page=1&per_page=20&sort=asc
// :id is the professor's user ID. Newest schedule first unless sort=asc.
func (h *ProfessorHandler) Sessions(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	page, perPage := pageParams(c)
	f := model.RoomFilter{Page: page, PerPage: perPage, SortDesc: c.Query("sort") != "asc"}

	rooms, total, err := h.rooms.ProfessorRooms(c.Request.Context(), caller, userID, f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"rooms": rooms}, response.NewPagination(page, perPage, total))
}
