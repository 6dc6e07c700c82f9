package handler

import (
	"net/http"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	"github.com/easylearn/easylearn-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoomHandler exposes the room lifecycle.
type RoomHandler struct {
	rooms *service.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create godoc
// POST /api/v1/rooms
// Schedules a room. Professors are assigned to the rooms they create.
func (h *RoomHandler) Create(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}

	var req model.CreateRoomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"room": room})
}

// List godoc
// GET /api/v1/rooms?status=LIVE&professor_id=...&page=1&per_page=20&sort=desc
func (h *RoomHandler) List(c *gin.Context) {
	f, ok := roomFilter(c)
	if !ok {
		return
	}
	professorID, ok := optionalUUIDQuery(c, "professor_id")
	if !ok {
		return
	}
	f.ProfessorID = professorID

	rooms, total, err := h.rooms.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"rooms": rooms}, response.NewPagination(f.Page, f.PerPage, total))
}

// Mine godoc
// GET /api/v1/rooms/mine
// Assigned rooms for professors, invitations for students, everything for admins.
func (h *RoomHandler) Mine(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	f, ok := roomFilter(c)
	if !ok {
		return
	}

	rooms, total, err := h.rooms.MyRooms(c.Request.Context(), caller, f)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"rooms": rooms}, response.NewPagination(f.Page, f.PerPage, total))
}

func roomFilter(c *gin.Context) (model.RoomFilter, bool) {
	page, perPage := pageParams(c)
	f := model.RoomFilter{Page: page, PerPage: perPage, SortDesc: c.Query("sort") == "desc"}

	if raw := c.Query("status"); raw != "" {
		status := model.RoomStatus(raw)
		switch status {
		case model.RoomStatusScheduled, model.RoomStatusLive, model.RoomStatusCompleted:
			f.Status = &status
		default:
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"status": "must be SCHEDULED, LIVE or COMPLETED"})
			return f, false
		}
	}
	return f, true
}

// Get godoc
// GET /api/v1/rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := h.rooms.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// Update godoc
// PATCH /api/v1/rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRoomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	room, err := h.rooms.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// Delete godoc
// DELETE /api/v1/rooms/:id
// Removes the provider room when possible, then the room and everything under it.
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.rooms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Participants godoc
// GET /api/v1/rooms/:id/participants
func (h *RoomHandler) Participants(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	parts, err := h.rooms.Participants(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"participants": parts})
}

// roomAction runs a caller-scoped room operation that returns the updated room.
func (h *RoomHandler) roomAction(c *gin.Context, fn func(*gin.Context, model.Principal, uuid.UUID) (*model.Room, error)) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	room, err := fn(c, caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// Start godoc
// POST /api/v1/rooms/:id/start
// Provisions the video room and moves SCHEDULED to LIVE.
func (h *RoomHandler) Start(c *gin.Context) {
	h.roomAction(c, func(c *gin.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
		return h.rooms.Start(c.Request.Context(), caller, id)
	})
}

// End godoc
// POST /api/v1/rooms/:id/end
func (h *RoomHandler) End(c *gin.Context) {
	h.roomAction(c, func(c *gin.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
		return h.rooms.End(c.Request.Context(), caller, id)
	})
}

// CanJoin godoc
// GET /api/v1/rooms/:id/can-join
// Answers with the room when the caller may enter it now, or with the reason they may not.
func (h *RoomHandler) CanJoin(c *gin.Context) {
	h.roomAction(c, func(c *gin.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
		return h.rooms.CanJoin(c.Request.Context(), id, caller)
	})
}

// Join godoc
// POST /api/v1/rooms/:id/join
func (h *RoomHandler) Join(c *gin.Context) {
	h.roomAction(c, func(c *gin.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
		return h.rooms.Join(c.Request.Context(), id, caller)
	})
}

// Leave godoc
// POST /api/v1/rooms/:id/leave
// The last active participant leaving completes the room.
func (h *RoomHandler) Leave(c *gin.Context) {
	h.roomAction(c, func(c *gin.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
		return h.rooms.Leave(c.Request.Context(), id, caller)
	})
}

// Token godoc
// POST /api/v1/rooms/:id/token
// Issues a video join credential. Only students are subscribe-only.
func (h *RoomHandler) Token(c *gin.Context) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	cred, err := h.rooms.IssueJoinToken(c.Request.Context(), id, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cred)
}

// participantAction resolves :id and :student_id for the moderation endpoints.
func (h *RoomHandler) participantAction(c *gin.Context, fn func(caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error)) {
	caller, ok := principal(c)
	if !ok {
		return
	}
	roomID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := uuidParam(c, "student_id")
	if !ok {
		return
	}

	part, err := fn(caller, roomID, studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"participant": part})
}

// Mute godoc
// PUT /api/v1/rooms/:id/participants/:student_id/mute
func (h *RoomHandler) Mute(c *gin.Context) {
	var req model.MuteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.participantAction(c, func(caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
		return h.rooms.Mute(c.Request.Context(), caller, roomID, studentID, req.Muted)
	})
}

// Ping godoc
// POST /api/v1/rooms/:id/participants/:student_id/ping
func (h *RoomHandler) Ping(c *gin.Context) {
	h.participantAction(c, func(caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
		return h.rooms.Ping(c.Request.Context(), caller, roomID, studentID)
	})
}

// ClearPing godoc
// DELETE /api/v1/rooms/:id/participants/:student_id/ping
func (h *RoomHandler) ClearPing(c *gin.Context) {
	h.participantAction(c, func(caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
		return h.rooms.ClearPing(c.Request.Context(), caller, roomID, studentID)
	})
}
