package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLoanPeriodDays = 14
	hoursPerDay           = 24
)

var DefaultFinePerDay = decimal.NewFromFloat(0.50)

// Policy holds the loan rules.
type Policy struct {
	LoanPeriodDays int
	FinePerDay     decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: DefaultLoanPeriodDays, FinePerDay: DefaultFinePerDay}
}

// DueDate is borrowedAt plus the loan period in calendar days.
func (p Policy) DueDate(borrowedAt time.Time) time.Time {
	days := p.LoanPeriodDays
	if days <= 0 {
		days = DefaultLoanPeriodDays
	}
	return borrowedAt.AddDate(0, 0, days)
}

// DaysLate counts started days between due and ref. Zero when ref is not after due.
func DaysLate(due, ref time.Time) int {
	if !ref.After(due) {
		return 0
	}
	return int(math.Ceil(ref.Sub(due).Hours() / hoursPerDay))
}

// Fine is days late times the daily rate.
func (p Policy) Fine(daysLate int) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	return p.FinePerDay.Mul(decimal.NewFromInt(int64(daysLate)))
}

// Assess fills the derived overdue fields of v at now. Returned loans are
// measured against their return date so a late return keeps its fine.
func (p Policy) Assess(v *TransactionView, now time.Time) {
	ref := now
	if v.ReturnDate != nil {
		ref = *v.ReturnDate
	}
	v.Overdue = v.IsOverdue(now)
	v.DaysOverdue = DaysLate(v.DueDate, ref)
	v.Fine = p.Fine(v.DaysOverdue)
}
