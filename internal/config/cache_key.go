package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey holds the JTI of the user's current login.
func (r *CacheKeyStruct) UserSessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("login:%s", userID)
}

// RoomEventsChannel returns the Redis PubSub channel name for a room's live events.
func (r *CacheKeyStruct) RoomEventsChannel(roomID uuid.UUID) string {
	return fmt.Sprintf("room:%s:events", roomID)
}

// RateLimitKey returns the fixed-window counter key for a client in a given window.
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, window)
}

// SweepLockKey guards the periodic token sweep across replicas.
func (r *CacheKeyStruct) SweepLockKey() string {
	return "lock:token_sweep"
}

var CacheKey = NewCacheKeyStruct()
