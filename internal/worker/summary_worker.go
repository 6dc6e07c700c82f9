package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SummaryPollTimeout = 1 * time.Second
	SummaryMaxRetries  = 3
)

type roomEndedPayload struct {
	RoomID  uuid.UUID `json:"room_id"`
	EndedAt time.Time `json:"ended_at"`
	Retries int       `json:"retries,omitempty"`
}

// SummaryQueue enqueues completed rooms for summary drafting.
type SummaryQueue struct {
	rdb *redis.Client
}

// NewSummaryQueue creates a new SummaryQueue.
func NewSummaryQueue(rdb *redis.Client) *SummaryQueue {
	return &SummaryQueue{rdb: rdb}
}

// NotifyRoomEnded pushes roomID onto the summary queue.
func (q *SummaryQueue) NotifyRoomEnded(ctx context.Context, roomID uuid.UUID, endedAt time.Time) error {
	return q.push(ctx, &roomEndedPayload{RoomID: roomID, EndedAt: endedAt})
}

func (q *SummaryQueue) push(ctx context.Context, p *roomEndedPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal summary payload: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.RoomSummaryQueue, raw).Err()
}

type roomReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
}

type pendingSummaryWriter interface {
	CreatePending(ctx context.Context, roomID, professorID uuid.UUID) (bool, error)
}

// SummaryWorker drafts a PENDING summary for every completed room with a professor.
type SummaryWorker struct {
	rdb       *redis.Client
	queue     *SummaryQueue
	rooms     roomReader
	summaries pendingSummaryWriter
	log       zerolog.Logger
}

// NewSummaryWorker creates a new SummaryWorker.
func NewSummaryWorker(rdb *redis.Client, rooms roomReader, summaries pendingSummaryWriter, log zerolog.Logger) *SummaryWorker {
	return &SummaryWorker{
		rdb:       rdb,
		queue:     NewSummaryQueue(rdb),
		rooms:     rooms,
		summaries: summaries,
		log:       log.With().Str("component", "summary_worker").Logger(),
	}
}

// Start drains the queue until ctx is cancelled.
func (w *SummaryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SummaryWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SummaryWorker stopped")
			return
		default:
			if _, err := w.ProcessNext(ctx); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("Summary processing failed")
			}
		}
	}
}

// ProcessNext handles at most one queued room. It reports whether an item was taken.
func (w *SummaryWorker) ProcessNext(ctx context.Context) (bool, error) {
	item, err := w.rdb.BLPop(ctx, SummaryPollTimeout, config.WorkerKey.RoomSummaryQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("blpop: %w", err)
	}
	if len(item) < 2 {
		return false, nil
	}

	var p roomEndedPayload
	if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return true, nil
	}

	if err := w.draft(ctx, &p); err != nil {
		if p.Retries >= SummaryMaxRetries {
			w.log.Error().Err(err).Str("room_id", p.RoomID.String()).Msg("Dropping summary after retries")
			return true, nil
		}
		p.Retries++
		if qerr := w.queue.push(ctx, &p); qerr != nil {
			return true, fmt.Errorf("requeue summary: %w", qerr)
		}
		return true, err
	}
	return true, nil
}

func (w *SummaryWorker) draft(ctx context.Context, p *roomEndedPayload) error {
	room, err := w.rooms.GetByID(ctx, p.RoomID)
	if errors.Is(err, pgx.ErrNoRows) {
		w.log.Debug().Str("room_id", p.RoomID.String()).Msg("Room gone before summary draft")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room.ProfessorID == nil {
		return nil
	}

	created, err := w.summaries.CreatePending(ctx, room.ID, *room.ProfessorID)
	if err != nil {
		return fmt.Errorf("create pending summary: %w", err)
	}
	if created {
		w.log.Info().Str("room_id", room.ID.String()).Msg("Pending summary drafted")
	}
	return nil
}
