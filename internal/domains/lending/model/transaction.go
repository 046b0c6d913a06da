package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusReturned
}

// Transaction is one borrow of one copy of a book by a member.
// ReturnDate is non-nil exactly when Status is StatusReturned; a returned
// transaction is never modified again.
type Transaction struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Status     Status     `json:"status"`
}

func (t *Transaction) IsActive() bool {
	return t.Status == StatusActive
}

// IsOverdue reports whether an active loan is past its due date at now.
func (t *Transaction) IsOverdue(now time.Time) bool {
	return t.IsActive() && t.DueDate.Before(now)
}

// TransactionView is a transaction joined with the current book and member
// display fields, plus the overdue figures derived at read time.
type TransactionView struct {
	Transaction
	BookTitle   string          `json:"book_title"`
	BookAuthor  string          `json:"book_author"`
	MemberName  string          `json:"member_name"`
	MemberEmail string          `json:"member_email"`
	Overdue     bool            `json:"overdue"`
	DaysOverdue int             `json:"days_overdue"`
	Fine        decimal.Decimal `json:"fine"`
}

// ReturnOutcome is the result of a committed return. CopyRestored is false
// when the book was already at total_copies and the increment was skipped.
type ReturnOutcome struct {
	Transaction  Transaction
	CopyRestored bool
}

// OverdueSummary is what the overdue scan job caches.
type OverdueSummary struct {
	Count      int             `json:"count"`
	TotalFines decimal.Decimal `json:"total_fines"`
	ScannedAt  time.Time       `json:"scanned_at"`
}
