package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book is a catalogue title with a pool of identical copies.
// 0 <= AvailableCopies <= TotalCopies always holds; the books table enforces
// it with a CHECK constraint as well.
type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	Category        *string   `json:"category"`
	Image           *string   `json:"image"`
	Year            *int      `json:"year,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CheckCopies reports whether the copy counters satisfy the invariant.
func (b *Book) CheckCopies() error {
	if b.TotalCopies < 0 || b.AvailableCopies < 0 {
		return ErrNegativeCopies
	}
	if b.AvailableCopies > b.TotalCopies {
		return ErrAvailableExceedsTotal
	}
	return nil
}

// OptionalString trims s and maps blank input to nil, which is stored as NULL.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// OnLoan is the number of copies currently borrowed.
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// DeletionRecord remembers a deleted book so bulk imports do not re-add it.
type DeletionRecord struct {
	ID        uuid.UUID `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	DeletedAt time.Time `json:"deleted_at"`
}
