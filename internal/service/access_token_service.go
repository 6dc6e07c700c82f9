package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	accessTokenSuffixLength = 12
	accessTokenMaxRetries   = 3
)

// AccessTokenService issues one-time invitation codes such as "STUDENT_3FA85F64B1C2".
type AccessTokenService struct {
	tokens AccessTokenStore
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewAccessTokenService creates a new AccessTokenService. ttl is the lifetime of a code.
func NewAccessTokenService(tokens AccessTokenStore, ttl time.Duration, log zerolog.Logger) *AccessTokenService {
	return &AccessTokenService{
		tokens: tokens,
		ttl:    ttl,
		log:    log.With().Str("component", "access_token_service").Logger(),
		now:    time.Now,
	}
}

// Generate issues a new code for role.
func (s *AccessTokenService) Generate(ctx context.Context, role model.Role, createdBy *uuid.UUID) (*model.AccessToken, error) {
	if !role.Valid() {
		return nil, invalidState("unknown role %q", role)
	}

	now := s.now()
	for i := 0; i < accessTokenMaxRetries; i++ {
		t := &model.AccessToken{
			ID:        uuid.New(),
			Token:     newAccessTokenCode(role),
			Role:      role,
			ExpiresAt: now.Add(s.ttl),
			CreatedBy: createdBy,
			CreatedAt: now,
		}
		err := s.tokens.Create(ctx, t)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create access token: %w", err)
		}
		s.log.Info().Str("role", string(role)).Time("expires_at", t.ExpiresAt).Msg("Access token issued")
		return t, nil
	}
	return nil, fmt.Errorf("create access token: %d collisions in a row", accessTokenMaxRetries)
}

// ListAvailable returns unused, unexpired codes, optionally for one role.
func (s *AccessTokenService) ListAvailable(ctx context.Context, role *model.Role) ([]model.AccessToken, error) {
	list, err := s.tokens.ListAvailable(ctx, role, s.now())
	if err != nil {
		return nil, fmt.Errorf("list access tokens: %w", err)
	}
	return list, nil
}

// Consume marks token as used by userID. It must run in the registering transaction.
func (s *AccessTokenService) Consume(ctx context.Context, token string, role model.Role, userID uuid.UUID) error {
	_, err := s.tokens.Consume(ctx, strings.TrimSpace(token), role, userID, s.now())
	if err != nil {
		if isNoRows(err) {
			return ErrInvalidAccessToken
		}
		return fmt.Errorf("consume access token: %w", err)
	}
	return nil
}

func newAccessTokenCode(role model.Role) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return string(role) + "_" + strings.ToUpper(raw[:accessTokenSuffixLength])
}
