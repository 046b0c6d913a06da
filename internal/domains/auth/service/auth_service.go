package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/config"
	"library-backend/internal/domains/auth/model"
	"library-backend/internal/shared"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
)

type ServiceInterface interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
}

type authService struct {
	cfg    config.AuthConfig
	tokens *jwt.Manager
	cache  cache.Cache
	now    func() time.Time
}

func NewAuthService(cfg config.AuthConfig, tokens *jwt.Manager, c cache.Cache) ServiceInterface {
	return &authService{cfg: cfg, tokens: tokens, cache: c, now: time.Now}
}

// Login checks the single admin account and issues an access token.
// Repeated failures lock the username for LockoutDuration.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if !s.cfg.Enabled {
		return nil, model.ErrAuthDisabled
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(shared.CacheKeyFailedLogin, req.Username)
	if s.lockedOut(ctx, key) {
		return nil, model.ErrTooManyAttempts
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.recordFailure(ctx, key)
		log.Warn().Str("username", req.Username).Msg("Failed admin login")
		return nil, model.ErrInvalidCredentials
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, key)
	}

	token, err := s.tokens.GenerateAccessToken(req.Username, shared.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	log.Info().Str("username", req.Username).Msg("Admin logged in")

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   s.now().Add(s.tokens.AccessTTL()),
		Username:    req.Username,
		Role:        shared.RoleAdmin,
	}, nil
}

func (s *authService) lockedOut(ctx context.Context, key string) bool {
	if s.cache == nil || s.cfg.MaxFailedAttempts <= 0 {
		return false
	}
	var attempts int64
	found, err := s.cache.Get(ctx, key, &attempts)
	if err != nil || !found {
		return false
	}
	return attempts >= int64(s.cfg.MaxFailedAttempts)
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.Increment(ctx, key)
	if err != nil {
		log.Debug().Err(err).Msg("failed login counter unavailable")
		return
	}
	if n == 1 {
		_ = s.cache.Expire(ctx, key, s.cfg.LockoutDuration)
	}
}
