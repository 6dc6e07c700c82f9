package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/easylearn/easylearn-backend/internal/events"
	"github.com/easylearn/easylearn-backend/internal/middleware"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/response"
	"github.com/easylearn/easylearn-backend/internal/service"
	ws "github.com/easylearn/easylearn-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// RoomGate decides whether a caller may watch a room.
type RoomGate interface {
	CanJoin(ctx context.Context, roomID uuid.UUID, caller model.Principal) (*model.Room, error)
}

// RoomEventSource opens a live feed of one room's events.
type RoomEventSource interface {
	Subscribe(ctx context.Context, roomID uuid.UUID) (RoomFeed, error)
}

// RoomFeed is an open room subscription.
type RoomFeed interface {
	Events() <-chan model.RoomEvent
	Close() error
}

type busSource struct {
	bus *events.RoomBus
}

func (b busSource) Subscribe(ctx context.Context, roomID uuid.UUID) (RoomFeed, error) {
	sub, err := b.bus.Subscribe(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// WSHandler streams live room events over WebSocket.
type WSHandler struct {
	rooms    RoomGate
	events   RoomEventSource
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler fed by the Redis room bus.
func NewWSHandler(rooms RoomGate, bus *events.RoomBus, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rooms:    rooms,
		events:   busSource{bus},
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// RoomEventStream godoc
// WS /ws/v1/rooms/:id/events?token=...
// Upgrades to WebSocket and relays mute, ping, attendance and status events
// for a room the caller is allowed to join.
func (h *WSHandler) RoomEventStream(c *gin.Context) {
	caller, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Authorize before upgrading so refusals are plain HTTP errors.
	room, err := h.rooms.CanJoin(c.Request.Context(), roomID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.events.Subscribe(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", caller.UserID.String()).
		Str("room_id", roomID.String()).
		Logger()
	wsLog.Info().Msg("Room subscriber connected")

	if err := ws.WriteTyped(conn, ws.ConnectedResponse{Event: ws.EventConnected, RoomID: roomID.String(), Status: room.Status}); err != nil {
		return
	}

	// The reader only reports which replies are owed; all writes stay on this goroutine.
	replies := make(chan ws.Event, 4)
	readDone := make(chan struct{})
	go h.readLoop(conn, wsLog, replies, readDone)

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			wsLog.Debug().Msg("Room subscriber disconnected")
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if err := ws.WriteTyped(conn, ws.RoomEventResponse{Event: ws.EventRoom, Data: ev}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		case reply := <-replies:
			var err error
			if reply == ws.EventPong {
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			} else {
				err = ws.WriteError(conn, "unknown action")
			}
			if err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, log zerolog.Logger, replies chan<- ws.Event, done chan<- struct{}) {
	defer close(done)
	ws.KeepAlive(conn)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		reply := ws.EventError
		if msg.Action == ws.ActionPing {
			reply = ws.EventPong
		}
		select {
		case replies <- reply:
		default:
			// client is flooding; drop the reply
		}
	}
}

var _ RoomGate = (*service.RoomService)(nil)
