package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the recurrence of a budget.
type BudgetPeriod string

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// Budget is a spending limit for one expense category. At most one budget per
// (owner, category, period) is active at a time; the write path upserts on
// that key.
type Budget struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"-"`
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Amount       decimal.Decimal `json:"amount"`
	Period       BudgetPeriod    `json:"period"`
	PeriodStart  time.Time       `json:"startDate"`
	PeriodEnd    time.Time       `json:"endDate"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// PeriodEndFor derives the end of a budget period that starts at start:
// the last instant of the calendar month for monthly budgets, Dec-31 of the
// same year for yearly ones.
func PeriodEndFor(period BudgetPeriod, start time.Time) time.Time {
	if period == PeriodYearly {
		return time.Date(start.Year(), time.December, 31, 23, 59, 59, 0, start.Location())
	}
	firstOfNext := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Second)
}
