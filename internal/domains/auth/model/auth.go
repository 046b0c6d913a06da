package model

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/response"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("username is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrAuthDisabled       = errors.New("authentication is disabled")
)

var authErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrInvalidCredentials: {http.StatusUnauthorized, "Invalid credentials", "Username or password is incorrect"},
	ErrTooManyAttempts:    {http.StatusTooManyRequests, "Too many attempts", "Account temporarily locked, try again later"},
	ErrAuthDisabled:       {http.StatusNotFound, "Authentication disabled", "Login is not enabled on this server"},
}

func HandleAuthError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", verrs)
		return true
	}

	for target, cfg := range authErrorMap {
		if errors.Is(err, target) {
			response.ErrorResponse(c, cfg.Status, cfg.Title, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Msg("[AuthHandler] Unexpected error")
	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", "Login failed")
	return true
}
