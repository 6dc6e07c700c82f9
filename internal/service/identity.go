package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

// IdentityResolver maps a login username to an account.
// Email takes precedence over a student's unique code.
type IdentityResolver struct {
	users UserStore
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(users UserStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the user identified by username, or a NotFound error.
func (r *IdentityResolver) Resolve(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, notFound("user")
	}

	u, err := r.users.GetUserByEmail(ctx, normalizeEmail(username))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	u, err = r.users.GetUserByStudentCode(ctx, strings.ToUpper(username))
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
