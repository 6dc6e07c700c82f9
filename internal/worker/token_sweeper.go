package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const minSweepLock = 30 * time.Second

type expiredAccessTokens interface {
	DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error)
}

type expiredProviderTokens interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SweepResult counts rows removed by one sweep.
type SweepResult struct {
	AccessTokens   int64 `json:"access_tokens"`
	ProviderTokens int64 `json:"provider_tokens"`
}

// TokenSweeper periodically removes expired invitation codes and provider credentials.
// A Redis lock keeps replicas from sweeping in the same interval.
type TokenSweeper struct {
	rdb      *redis.Client
	access   expiredAccessTokens
	provider expiredProviderTokens
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewTokenSweeper creates a new TokenSweeper.
func NewTokenSweeper(rdb *redis.Client, access expiredAccessTokens, provider expiredProviderTokens, interval time.Duration, log zerolog.Logger) *TokenSweeper {
	return &TokenSweeper{
		rdb:      rdb,
		access:   access,
		provider: provider,
		interval: interval,
		log:      log.With().Str("component", "token_sweeper").Logger(),
		now:      time.Now,
	}
}

// Start sweeps immediately and then on every interval until ctx is cancelled.
func (w *TokenSweeper) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("TokenSweeper started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, _, err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Token sweep failed")
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("TokenSweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick sweeps if this replica wins the interval's lock. ran is false when another replica holds it.
func (w *TokenSweeper) Tick(ctx context.Context) (res SweepResult, ran bool, err error) {
	ttl := w.interval / 2
	if ttl < minSweepLock {
		ttl = minSweepLock
	}
	ok, err := w.rdb.SetNX(ctx, config.CacheKey.SweepLockKey(), w.now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return res, false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		w.log.Debug().Msg("Sweep lock held elsewhere, skipping")
		return res, false, nil
	}

	res, err = w.SweepOnce(ctx)
	return res, true, err
}

// SweepOnce deletes expired rows without taking the lock.
func (w *TokenSweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	now := w.now()
	var res SweepResult
	var err error

	if res.AccessTokens, err = w.access.DeleteExpiredUnused(ctx, now); err != nil {
		return res, fmt.Errorf("sweep access tokens: %w", err)
	}
	if res.ProviderTokens, err = w.provider.DeleteExpired(ctx, now); err != nil {
		return res, fmt.Errorf("sweep provider tokens: %w", err)
	}

	w.log.Info().
		Int64("access_tokens", res.AccessTokens).
		Int64("provider_tokens", res.ProviderTokens).
		Msg("Expired tokens swept")
	return res, nil
}
