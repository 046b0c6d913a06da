package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/config"
	"library-backend/internal/domains/auth/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
)

func newAuth(t *testing.T, enabled bool) (ServiceInterface, *jwt.Manager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := jwt.NewManager("test-secret", time.Hour)
	cfg := config.AuthConfig{
		Enabled:           enabled,
		AdminUsername:     "librarian",
		AdminPasswordHash: string(hash),
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
	}
	return NewAuthService(cfg, tokens, cache.NewMemoryCache()), tokens
}

func TestLogin_Success(t *testing.T) {
	svc, tokens := newAuth(t, true)

	resp, err := svc.Login(context.Background(), model.LoginRequest{Username: "librarian", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)

	claims, err := tokens.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "librarian", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newAuth(t, true)

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "librarian", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), model.LoginRequest{Username: "someone", Password: "s3cret"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	svc, _ := newAuth(t, true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, model.LoginRequest{Username: "librarian", Password: "wrong"})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, model.LoginRequest{Username: "librarian", Password: "s3cret"})
	assert.ErrorIs(t, err, model.ErrTooManyAttempts)
}

func TestLogin_Disabled(t *testing.T) {
	svc, _ := newAuth(t, false)

	_, err := svc.Login(context.Background(), model.LoginRequest{Username: "librarian", Password: "s3cret"})
	assert.ErrorIs(t, err, model.ErrAuthDisabled)
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := newAuth(t, true)

	_, err := svc.Login(context.Background(), model.LoginRequest{})
	assert.Error(t, err)
}
