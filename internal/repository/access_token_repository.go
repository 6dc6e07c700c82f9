package repository

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessTokenRepository handles invitation code persistence.
type AccessTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAccessTokenRepository creates a new AccessTokenRepository.
func NewAccessTokenRepository(pool *pgxpool.Pool) *AccessTokenRepository {
	return &AccessTokenRepository{pool: pool}
}

const accessTokenColumns = `id, token, role, is_used, expires_at, created_by, used_by, used_at, created_at`

func scanAccessToken(row interface{ Scan(...any) error }) (*model.AccessToken, error) {
	t := &model.AccessToken{}
	if err := row.Scan(&t.ID, &t.Token, &t.Role, &t.IsUsed, &t.ExpiresAt, &t.CreatedBy, &t.UsedBy, &t.UsedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new token. A colliding code yields ErrDuplicate.
func (r *AccessTokenRepository) Create(ctx context.Context, t *model.AccessToken) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO access_tokens (id, token, role, expires_at, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		t.ID, t.Token, t.Role, t.ExpiresAt, t.CreatedBy,
	).Scan(&t.CreatedAt)
	return mapErr(err)
}

// Consume atomically marks the token used. It returns pgx.ErrNoRows when the token
// does not exist, has another role, is already used, or has expired.
func (r *AccessTokenRepository) Consume(ctx context.Context, token string, role model.Role, usedBy uuid.UUID, now time.Time) (*model.AccessToken, error) {
	return scanAccessToken(database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE access_tokens
		 SET is_used = TRUE, used_by = $3, used_at = $4
		 WHERE token = $1 AND role = $2 AND NOT is_used AND expires_at > $4
		 RETURNING `+accessTokenColumns,
		token, role, usedBy, now,
	))
}

// ListAvailable returns unused, unexpired tokens, newest first.
func (r *AccessTokenRepository) ListAvailable(ctx context.Context, role *model.Role, now time.Time) ([]model.AccessToken, error) {
	query := `SELECT ` + accessTokenColumns + ` FROM access_tokens WHERE NOT is_used AND expires_at > $1`
	args := []any{now}
	if role != nil {
		query += ` AND role = $2`
		args = append(args, *role)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []model.AccessToken{}
	for rows.Next() {
		t, err := scanAccessToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	return tokens, rows.Err()
}

// DeleteExpiredUnused removes tokens that can no longer be redeemed.
func (r *AccessTokenRepository) DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error) {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM access_tokens WHERE NOT is_used AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
