package model

import (
	activityModel "library-backend/internal/domains/activity/model"
	lendingModel "library-backend/internal/domains/lending/model"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Counters are the headline numbers on the dashboard.
type Counters struct {
	TotalBooks         int `json:"total_books"`
	TotalMembers       int `json:"total_members"`
	ActiveTransactions int `json:"active_transactions"`
}

// Overview is the GET /api/dashboard payload. Overdue is the last cached
// overdue scan and is nil until the worker has run once.
type Overview struct {
	Counters
	RecentActivity []activityModel.EntryView    `json:"recent_activity"`
	Overdue        *lendingModel.OverdueSummary `json:"overdue,omitempty"`
}

// ClampRecentLimit maps non-positive values to def and caps at MaxRecentLimit.
func ClampRecentLimit(limit, def int) int {
	if def <= 0 {
		def = DefaultRecentLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}
