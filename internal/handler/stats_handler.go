package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves the per-role dashboards.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard godoc
// GET /api/v1/stats
// Returns the rollup matching the caller's role.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		stats any
		err   error
	)
	switch caller.Role {
	case model.RoleAdmin:
		stats, err = h.stats.Admin(ctx)
	case model.RoleProfessor:
		stats, err = h.stats.Professor(ctx, caller.UserID)
	case model.RoleStudent:
		stats, err = h.stats.Student(ctx, caller.UserID)
	default:
		response.Fail(c, http.StatusForbidden, response.ErrRoleNotAllowed)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
