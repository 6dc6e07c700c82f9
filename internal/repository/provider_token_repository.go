package repository

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderTokenRepository records join credentials issued by the video provider.
type ProviderTokenRepository struct {
	pool *pgxpool.Pool
}

// NewProviderTokenRepository creates a new ProviderTokenRepository.
func NewProviderTokenRepository(pool *pgxpool.Pool) *ProviderTokenRepository {
	return &ProviderTokenRepository{pool: pool}
}

// Create inserts an issued credential.
func (r *ProviderTokenRepository) Create(ctx context.Context, t *model.ProviderToken) error {
	return database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO provider_tokens (id, user_id, room_id, identity, token, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		t.ID, t.UserID, t.RoomID, t.Identity, t.Token, t.ExpiresAt,
	).Scan(&t.CreatedAt)
}

// DeleteExpired removes credentials past their expiry.
func (r *ProviderTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM provider_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
