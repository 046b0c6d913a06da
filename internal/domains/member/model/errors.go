package model

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/response"
)

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrMemberHasActiveLoans = errors.New("member has active loans and cannot be deleted")
)

var memberErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrMemberNotFound: {
		Status:  http.StatusNotFound,
		Title:   "Member not found",
		Message: "The specified member does not exist",
	},
	ErrMemberHasActiveLoans: {
		Status:  http.StatusConflict,
		Title:   "Member has active loans",
		Message: "The member must return every borrowed book before being removed",
	},
}

func HandleMemberError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", verrs)
		return true
	}

	for target, cfg := range memberErrorMap {
		if errors.Is(err, target) {
			response.ErrorResponse(c, cfg.Status, cfg.Title, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("[MemberHandler] Unexpected error")
	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", "Failed to process member request")
	return true
}

func NewMemberNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrMemberNotFound, id)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}
