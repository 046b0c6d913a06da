package model

import (
	"time"

	"github.com/google/uuid"
)

// Member is a library patron. JoinDate is set once at creation.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	JoinDate  time.Time `json:"join_date"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListMembersFilter drives GET /api/members.
type ListMembersFilter struct {
	Search string
	Limit  int
	Offset int
}
