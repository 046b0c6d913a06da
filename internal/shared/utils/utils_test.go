package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, DefaultPageSize},
		{"?page=3&limit=10", 3, 10},
		{"?page=-1&limit=1000", 1, MaxPageSize},
		{"?page=x&limit=y", 1, DefaultPageSize},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/books"+tt.query, nil)
		page, limit := ParsePagination(c)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 0, Offset(0, 20))
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("nope"))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
}

func TestSQLHelpers(t *testing.T) {
	assert.Equal(t, "", WhereClause(nil))
	assert.Equal(t, " WHERE a = $1 AND b = $2", WhereClause([]string{"a = $1", "b = $2"}))
	assert.Equal(t, `%50\%\_off%`, LikePattern(" 50%_off "))
}
