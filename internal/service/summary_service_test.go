package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeSummaries struct {
	mu     sync.Mutex
	byRoom map[uuid.UUID]model.SessionSummary
}

func (f *fakeSummaries) Upsert(_ context.Context, s *model.SessionSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.byRoom[s.RoomID]; ok {
		s.ID = old.ID
	}
	f.byRoom[s.RoomID] = *s
	return nil
}

func (f *fakeSummaries) CreatePending(_ context.Context, roomID, professorID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byRoom[roomID]; ok {
		return false, nil
	}
	f.byRoom[roomID] = model.SessionSummary{ID: uuid.New(), RoomID: roomID, ProfessorID: professorID, Status: model.SummaryStatusPending}
	return true, nil
}

func (f *fakeSummaries) GetByRoom(_ context.Context, roomID uuid.UUID) (*model.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byRoom[roomID]; ok {
		return &s, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSummaries) ListByProfessor(_ context.Context, professorID uuid.UUID) ([]model.SessionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.SessionSummary{}
	for _, s := range f.byRoom {
		if s.ProfessorID == professorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaries) ListForStudent(context.Context, uuid.UUID) ([]model.SessionSummary, error) {
	return []model.SessionSummary{}, nil
}

func TestSummaryUpsertByAssignedProfessor(t *testing.T) {
	db := newMemDB()
	store := &fakeSummaries{byRoom: map[uuid.UUID]model.SessionSummary{}}
	svc := NewSummaryService(store, fakeRooms{db}, fakeUsers{db})
	ctx := context.Background()
	prof, p := db.addProfessor("Prof. Berrada")
	other, _ := db.addProfessor("Prof. Tazi")

	room := model.Room{ID: uuid.New(), Name: "English B2", ProfessorID: &p.ID, Status: model.RoomStatusCompleted, ScheduledAt: time.Now()}
	db.rooms[room.ID] = room
	if _, err := store.CreatePending(ctx, room.ID, p.ID); err != nil {
		t.Fatalf("draft: %v", err)
	}

	req := &model.UpsertSummaryRequest{RoomID: room.ID, Summary: "Worked on conditionals."}
	if _, err := svc.CreateOrUpdate(ctx, other.UserID, req); !errors.Is(err, ErrNotAssignedProfessor) {
		t.Fatalf("other professor: got %v", err)
	}
	sum, err := svc.CreateOrUpdate(ctx, prof.UserID, req)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if sum.Status != model.SummaryStatusPublished || sum.RoomName != "English B2" {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if list, _ := svc.ByProfessor(ctx, prof.UserID); len(list) != 1 {
		t.Fatalf("expected the draft replaced, got %d summaries", len(list))
	}
	if _, err := svc.GetByRoom(ctx, uuid.New()); !isKind(err, ErrNotFound) {
		t.Fatalf("unknown room summary: got %v", err)
	}
}
