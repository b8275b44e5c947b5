package service

import (
	"context"
	"log/slog"

	"github.com/bibliointel/bibliointel-server/internal/auth"
	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/store"
)

// AdminService handles administrator accounts and login.
type AdminService struct {
	store  store.AdminStore
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(adminStore store.AdminStore, tokens *auth.TokenService, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  adminStore,
		tokens: tokens,
		logger: logger,
	}
}

// EnsureSeedAdmin creates the configured admin account when the admins
// table is empty. Credentials come from the environment, never from
// source.
func (s *AdminService) EnsureSeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.Debug("no seed admin configured")
		return nil
	}

	n, err := s.store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &domain.Admin{Username: username, PasswordHash: hash}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("seed admin created", "username", username)
	return nil
}

// LoginResult carries a fresh session token.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// Login verifies credentials and issues a session token. Unknown
// usernames and wrong passwords return the same error.
func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials("invalid username or password")
		}
		return nil, err
	}

	if !auth.VerifyPassword(admin.PasswordHash, password) {
		return nil, errors.InvalidCredentials("invalid username or password")
	}

	token, err := s.tokens.GenerateToken(admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", "username", username)
	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokens.TokenDuration().Seconds()),
	}, nil
}

// Verify checks a session token and returns its claims.
func (s *AdminService) Verify(token string) (*auth.AdminClaims, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
