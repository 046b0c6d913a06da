package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseStringToUUID returns uuid.Nil for empty or malformed input.
func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// ParsePagination reads ?page=&limit= and clamps them to sane bounds.
func ParsePagination(c *gin.Context) (page, limit int) {
	page = QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = ClampLimit(QueryInt(c, "limit", DefaultPageSize), DefaultPageSize, MaxPageSize)
	return page, limit
}

// ClampLimit returns def for non-positive values and max for values above max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// QueryInt reads an integer query param, falling back to def when absent or malformed.
func QueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// Offset converts a 1-based page to a SQL offset.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
