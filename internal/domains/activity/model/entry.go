package model

import (
	"time"

	"github.com/google/uuid"
)

// Type is the kind of event an activity entry records.
type Type string

const (
	TypeAddBook   Type = "add_book"
	TypeAddMember Type = "add_member"
	TypeIssue     Type = "issue"
	TypeReturn    Type = "return"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeAddBook, TypeAddMember, TypeIssue, TypeReturn:
		return true
	}
	return false
}

// Entry is one append-only activity log row. Message is a snapshot taken
// when the event happened and is never rewritten, even if the book or
// member is later renamed or deleted.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	Type      Type       `json:"type"`
	BookID    *uuid.UUID `json:"book_id,omitempty"`
	MemberID  *uuid.UUID `json:"member_id,omitempty"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// EntryView adds the current display names resolved by a live join.
// Both are nil when the referenced row no longer exists.
type EntryView struct {
	Entry
	BookTitle  *string `json:"book_title,omitempty"`
	MemberName *string `json:"member_name,omitempty"`
}

// Ref returns a pointer to a copy of id, or nil for uuid.Nil.
func Ref(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
