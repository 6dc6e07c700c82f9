package events

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPublishReachesRoomSubscriber(t *testing.T) {
	ctx := context.Background()
	bus := NewRoomBus(newClient(t))
	roomID := uuid.New()
	studentID := uuid.New()

	sub, err := bus.Subscribe(ctx, roomID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	muted := true
	want := model.RoomEvent{Type: model.RoomEventMuted, RoomID: roomID, StudentID: &studentID, Muted: &muted, At: time.Now().UTC()}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-sub.Events():
		if got.Type != want.Type || got.RoomID != roomID {
			t.Fatalf("unexpected event %+v", got)
		}
		if got.StudentID == nil || *got.StudentID != studentID {
			t.Fatalf("expected student %s, got %v", studentID, got.StudentID)
		}
		if got.Muted == nil || !*got.Muted {
			t.Fatalf("expected muted=true, got %v", got.Muted)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestSubscriberIgnoresOtherRooms(t *testing.T) {
	ctx := context.Background()
	bus := NewRoomBus(newClient(t))
	mine, other := uuid.New(), uuid.New()

	sub, err := bus.Subscribe(ctx, mine)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if err := bus.Publish(ctx, model.RoomEvent{Type: model.RoomEventPinged, RoomID: other}); err != nil {
		t.Fatalf("publish other: %v", err)
	}
	if err := bus.Publish(ctx, model.RoomEvent{Type: model.RoomEventStatusChanged, RoomID: mine, Status: model.RoomStatusLive}); err != nil {
		t.Fatalf("publish mine: %v", err)
	}

	select {
	case got := <-sub.Events():
		if got.RoomID != mine || got.Status != model.RoomStatusLive {
			t.Fatalf("expected only my room's status event, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}
