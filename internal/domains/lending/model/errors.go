package model

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared"
	"library-backend/internal/shared/response"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBookUnavailable     = errors.New("book not available")
	ErrMemberNotFound      = errors.New("member not found")
	ErrAlreadyReturned     = errors.New("transaction already returned")
	// ErrInconsistentState means a copy-count update could not be applied
	// after the transaction row was written. The unit of work is rolled back.
	ErrInconsistentState = errors.New("inconsistent lending state")
)

var lendingErrorMap = []struct {
	err     error
	Status  int
	Title   string
	Message string
}{
	{ErrTransactionNotFound, http.StatusNotFound, "Transaction not found", "The specified transaction does not exist"},
	{ErrMemberNotFound, http.StatusNotFound, "Member not found", "The specified member does not exist"},
	{ErrBookUnavailable, http.StatusBadRequest, "Book not available", "No copies of this book are available"},
	{ErrAlreadyReturned, http.StatusConflict, "Already returned", "This transaction has already been returned"},
	{ErrInconsistentState, http.StatusInternalServerError, "Internal server error", "Lending state could not be updated"},
	{shared.ErrStoreFailure, http.StatusInternalServerError, "Internal server error", "Storage failure"},
}

// HandleLendingError writes the mapped error response and reports whether err was non-nil.
func HandleLendingError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorResponse(c, http.StatusBadRequest, "Validation failed", verrs)
		return true
	}

	for _, e := range lendingErrorMap {
		if errors.Is(err, e.err) {
			if e.Status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.FullPath()).Msg("[LendingHandler] Request failed")
			}
			response.ErrorResponse(c, e.Status, e.Title, e.Message)
			return true
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("[LendingHandler] Unexpected error")
	response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", "Failed to process transaction request")
	return true
}

func NewTransactionNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrTransactionNotFound, id)
}

func NewBookUnavailableError(bookID uuid.UUID) error {
	return fmt.Errorf("%w: book_id=%s", ErrBookUnavailable, bookID)
}

func NewMemberNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrMemberNotFound, id)
}

func NewAlreadyReturnedError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrAlreadyReturned, id)
}

func NewInconsistentStateError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInconsistentState, fmt.Sprintf(format, args...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrMemberNotFound)
}

func IsInconsistentState(err error) bool {
	return errors.Is(err, ErrInconsistentState)
}
