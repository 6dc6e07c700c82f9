package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const studentCodeLength = 8

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
	Name   string     `json:"name"`
}

// Principal converts the claims into the caller identity used by services.
func (c *Claims) Principal() model.Principal {
	return model.Principal{UserID: c.UserID, Role: c.Role, Name: c.Name}
}

// Profile is the authenticated user plus their role profile.
type Profile struct {
	User      *model.User      `json:"user"`
	Student   *model.Student   `json:"student,omitempty"`
	Professor *model.Professor `json:"professor,omitempty"`
}

// AuthService handles registration, login, JWT and session management.
// The latest login wins: each login replaces the session JTI stored in Redis.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	tx       Transactor
	users    UserStore
	resolver *IdentityResolver
	tokens   *AccessTokenService
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, tx Transactor, users UserStore, tokens *AccessTokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		tx:       tx,
		users:    users,
		resolver: NewIdentityResolver(users),
		tokens:   tokens,
		log:      log.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login resolves username (email first, then student code) and checks the password.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	user, err := s.resolver.Resolve(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issue(ctx, user)
}

// RegisterStudent creates a student account, consuming a STUDENT access token.
func (s *AuthService) RegisterStudent(ctx context.Context, req *model.RegisterStudentRequest) (*model.AuthResult, error) {
	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	level := req.Level
	if level == "" {
		level = model.LevelA1
	}
	student := &model.Student{
		ID:         uuid.New(),
		UserID:     user.ID,
		Name:       user.Name,
		Nickname:   req.Nickname,
		Level:      level,
		UniqueCode: newStudentCode(),
	}

	err = s.register(ctx, user, req.AccessToken, func(ctx context.Context) error {
		return s.users.CreateStudent(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// RegisterProfessor creates a professor account, consuming a PROFESSOR access token.
func (s *AuthService) RegisterProfessor(ctx context.Context, req *model.RegisterProfessorRequest) (*model.AuthResult, error) {
	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, model.RoleProfessor)
	if err != nil {
		return nil, err
	}
	prof := &model.Professor{
		ID:             uuid.New(),
		UserID:         user.ID,
		Name:           user.Name,
		Bio:            req.Bio,
		Languages:      req.Languages,
		Specialization: req.Specialization,
	}

	err = s.register(ctx, user, req.AccessToken, func(ctx context.Context) error {
		return s.users.CreateProfessor(ctx, prof)
	})
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// RegisterAdmin creates an admin account, consuming an ADMIN access token.
func (s *AuthService) RegisterAdmin(ctx context.Context, req *model.RegisterAdminRequest) (*model.AuthResult, error) {
	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.register(ctx, user, req.AccessToken, nil); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// CreateAdmin creates an admin without an access token. Used by the CLI bootstrap.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	user, err := s.newUser(ctx, name, email, password, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

// CreateStudent creates a student account on behalf of an admin, without an access token.
func (s *AuthService) CreateStudent(ctx context.Context, adminID uuid.UUID, req *model.CreateStudentRequest) (*model.Student, error) {
	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	user.CreatedBy = &adminID
	level := req.Level
	if level == "" {
		level = model.LevelA1
	}
	student := &model.Student{
		ID:         uuid.New(),
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Nickname:   req.Nickname,
		Bio:        req.Bio,
		Level:      level,
		UniqueCode: newStudentCode(),
	}

	err = s.createWithProfile(ctx, user, func(ctx context.Context) error {
		return s.users.CreateStudent(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// CreateProfessor creates a professor account on behalf of an admin, without an access token.
func (s *AuthService) CreateProfessor(ctx context.Context, adminID uuid.UUID, req *model.CreateProfessorRequest) (*model.Professor, error) {
	user, err := s.newUser(ctx, req.Name, req.Email, req.Password, model.RoleProfessor)
	if err != nil {
		return nil, err
	}
	user.CreatedBy = &adminID
	prof := &model.Professor{
		ID:             uuid.New(),
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Bio:            req.Bio,
		Languages:      req.Languages,
		Specialization: req.Specialization,
	}

	err = s.createWithProfile(ctx, user, func(ctx context.Context) error {
		return s.users.CreateProfessor(ctx, prof)
	})
	if err != nil {
		return nil, err
	}
	return prof, nil
}

// Me returns the caller's account and profile.
func (s *AuthService) Me(ctx context.Context, caller model.Principal) (*Profile, error) {
	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	p := &Profile{User: user}
	switch user.Role {
	case model.RoleStudent:
		if p.Student, err = s.users.GetStudentByUserID(ctx, user.ID); err != nil {
			return nil, lookupErr(err, "student")
		}
	case model.RoleProfessor:
		if p.Professor, err = s.users.GetProfessorByUserID(ctx, user.ID); err != nil {
			return nil, lookupErr(err, "professor")
		}
	case model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", user.Role)
	}
	return p, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateSession checks that the token's JTI matches the active session in Redis.
func (s *AuthService) ValidateSession(ctx context.Context, userID uuid.UUID, jti string) error {
	stored, err := s.rdb.Get(ctx, config.CacheKey.UserSessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout removes the user's session, invalidating every outstanding JWT.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID)).Err()
}

// ─── Internal helpers ───────────────────────────────────────────────

func (s *AuthService) newUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	user := &model.User{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(name),
		Role:     role,
		IsActive: true,
	}
	if email = normalizeEmail(email); email != "" {
		_, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			return nil, ErrEmailTaken
		case !isNoRows(err):
			return nil, fmt.Errorf("check email: %w", err)
		}
		user.Email = &email
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return user, nil
}

// register persists user and its profile and consumes the access token in one transaction.
func (s *AuthService) register(ctx context.Context, user *model.User, accessToken string, createProfile func(ctx context.Context) error) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if createProfile != nil {
			if err := createProfile(ctx); err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
		}
		return s.tokens.Consume(ctx, accessToken, user.Role, user.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("User registered")
	return nil
}

func (s *AuthService) createWithProfile(ctx context.Context, user *model.User, createProfile func(ctx context.Context) error) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := createProfile(ctx); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Str("created_by", user.CreatedBy.String()).
		Msg("User created by admin")
	return nil
}

// issue signs a JWT for user and records its JTI as the active session.
func (s *AuthService) issue(ctx context.Context, user *model.User) (*model.AuthResult, error) {
	jti := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.rdb.Set(ctx, config.CacheKey.UserSessionKey(user.ID), jti, s.cfg.JWTExpiry).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &model.AuthResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

func newStudentCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EL" + strings.ToUpper(raw[:studentCodeLength])
}
