package handler

import (
	"context"
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Accepts an email or a student's unique code as username. The newest login
// replaces any earlier session of the same user.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// RegisterStudent godoc
// POST /api/v1/auth/register/student
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req model.RegisterStudentRequest
	register(c, &req, h.authService.RegisterStudent)
}

// RegisterProfessor godoc
// POST /api/v1/auth/register/professor
func (h *AuthHandler) RegisterProfessor(c *gin.Context) {
	var req model.RegisterProfessorRequest
	register(c, &req, h.authService.RegisterProfessor)
}

// RegisterAdmin godoc
// POST /api/v1/auth/register/admin
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req model.RegisterAdminRequest
	register(c, &req, h.authService.RegisterAdmin)
}

func register[T any](c *gin.Context, req *T, fn func(context.Context, *T) (*model.AuthResult, error)) {
	if fields := validator.Bind(c, req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := fn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the authenticated user with their student or professor profile.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), caller.UserID); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
