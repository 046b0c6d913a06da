package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// IssueRequest is the body of POST /api/transactions/issue.
type IssueRequest struct {
	BookID   string `json:"book_id"`
	MemberID string `json:"member_id"`
}

func (r IssueRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book_id is required"), is.UUID),
		validation.Field(&r.MemberID, validation.Required.Error("member_id is required"), is.UUID),
	)
}

// IDs parses both identifiers. Call after Validate.
func (r IssueRequest) IDs() (bookID, memberID uuid.UUID, err error) {
	if bookID, err = uuid.Parse(r.BookID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if memberID, err = uuid.Parse(r.MemberID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return bookID, memberID, nil
}

// Sort orders for ListFilter
const (
	SortBorrowDateDesc = "borrow_date_desc"
	SortDueDateAsc     = "due_date_asc"
)

// ListFilter drives the transaction listings.
type ListFilter struct {
	Status       *Status
	BookID       *uuid.UUID
	MemberID     *uuid.UUID
	OverdueAt    *time.Time // only active loans due before this instant
	BorrowedFrom *time.Time
	BorrowedTo   *time.Time
	Sort         string
	Limit        int
	Offset       int
}
