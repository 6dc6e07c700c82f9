package handler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestCollectReportsSummaryQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	if _, err := mr.Lpush(config.WorkerKey.RoomSummaryQueue, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := mr.Lpush(config.WorkerKey.RoomSummaryQueue, "b"); err != nil {
		t.Fatal(err)
	}

	h := NewSystemHandler(nil, rdb, zerolog.Nop())
	m := h.collect(context.Background())
	if m.QueueRoomSummaries != 2 {
		t.Fatalf("queue = %d, want 2", m.QueueRoomSummaries)
	}
	if m.Goroutines == 0 || m.GoVersion == "" {
		t.Fatalf("runtime metrics missing: %+v", m)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		42 * time.Second:                  "0m 42s",
		3*time.Hour + 5*time.Minute:       "3h 5m 0s",
		50*time.Hour + 30*time.Minute + 1: "2d 2h 30m 0s",
	}
	for d, want := range cases {
		if got := formatDuration(d); got != want {
			t.Fatalf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}
