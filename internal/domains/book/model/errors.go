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
	ErrBookNotFound          = errors.New("book not found")
	ErrNegativeCopies        = errors.New("copy counts cannot be negative")
	ErrAvailableExceedsTotal = errors.New("available_copies cannot exceed total_copies")
	ErrCopiesBelowLoaned     = errors.New("total_copies cannot be lower than copies on loan")
	ErrBookHasActiveLoans    = errors.New("book has active loans and cannot be deleted")
	ErrCoverStorageDisabled  = errors.New("cover storage is not configured")
	ErrInvalidCover          = errors.New("invalid cover image")
)

var bookErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Title:   "Book not found",
		Message: "The specified book does not exist",
	},
	ErrNegativeCopies: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid copy count",
		Message: "Copy counts cannot be negative",
	},
	ErrAvailableExceedsTotal: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid copy count",
		Message: "Available copies cannot exceed total copies",
	},
	ErrCopiesBelowLoaned: {
		Status:  http.StatusConflict,
		Title:   "Copies on loan",
		Message: "Total copies cannot drop below the number of copies currently on loan",
	},
	ErrBookHasActiveLoans: {
		Status:  http.StatusConflict,
		Title:   "Book has active loans",
		Message: "Return every borrowed copy before deleting this book",
	},
	ErrInvalidCover: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid cover image",
		Message: "Cover must be a JPEG, PNG or GIF image",
	},
	ErrCoverStorageDisabled: {
		Status:  http.StatusServiceUnavailable,
		Title:   "Cover storage unavailable",
		Message: "Object storage is not configured",
	},
}

// HandleBookError writes the mapped error response and reports whether err was non-nil.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", verrs)
		return true
	}

	for target, cfg := range bookErrorMap {
		if errors.Is(err, target) {
			response.ErrorResponse(c, cfg.Status, cfg.Title, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("[BookHandler] Unexpected error")
	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", "Failed to process book request")
	return true
}

func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

func NewCopiesBelowLoanedError(total, onLoan int) error {
	return fmt.Errorf("%w: total=%d, on_loan=%d", ErrCopiesBelowLoaned, total, onLoan)
}

func NewInvalidCoverError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidCover, err)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

// IsCopyCountError matches every copy-count rule violation.
func IsCopyCountError(err error) bool {
	return errors.Is(err, ErrNegativeCopies) ||
		errors.Is(err, ErrAvailableExceedsTotal) ||
		errors.Is(err, ErrCopiesBelowLoaned)
}
