package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	assert.Equal(t, `Issued "Dune" to Ada Lovelace`, IssueMessage("Dune", "Ada Lovelace"))
	assert.Equal(t, `Returned "Dune" by Ada Lovelace`, ReturnMessage("Dune", "Ada Lovelace"))
	assert.Equal(t, "Added book: Dune", AddBookMessage("Dune"))
	assert.Equal(t, "Added member: Ada Lovelace", AddMemberMessage("Ada Lovelace"))
}

func TestMessages_UnknownFallback(t *testing.T) {
	assert.Equal(t, `Issued "Unknown" to Unknown`, IssueMessage("", "  "))
	assert.Equal(t, `Returned "Dune" by Unknown`, ReturnMessage("Dune", ""))
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeIssue.IsValid())
	assert.False(t, Type("delete_book").IsValid())
}

func TestRef(t *testing.T) {
	assert.Nil(t, Ref(uuid.Nil))
	id := uuid.New()
	assert.Equal(t, id, *Ref(id))
}
