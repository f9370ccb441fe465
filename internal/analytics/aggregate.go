package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

// TrendBucket is the width of a trend interval. Bucket boundaries use
// calendar semantics in UTC: day is midnight-to-midnight, week is
// Monday-to-Sunday, month is first-to-last calendar day.
type TrendBucket string

const (
	BucketDay   TrendBucket = "day"
	BucketWeek  TrendBucket = "week"
	BucketMonth TrendBucket = "month"
)

// Valid reports whether b is a known bucket width.
func (b TrendBucket) Valid() bool {
	return b == BucketDay || b == BucketWeek || b == BucketMonth
}

var hundred = decimal.NewFromInt(100)

// CategorySpend is one row of a category breakdown.
type CategorySpend struct {
	Category         string          `json:"category"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Percentage       decimal.Decimal `json:"percentageOfTotal"`
	TransactionCount int             `json:"transactionCount"`
}

// TrendPoint is one time bucket of income/expense/savings totals. Savings
// may be negative.
type TrendPoint struct {
	BucketStart time.Time       `json:"bucketStart"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Savings     decimal.Decimal `json:"savings"`
}

// Summary is the scope-wide reduction over all transactions.
type Summary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	Savings          decimal.Decimal `json:"savings"`
	TransactionCount int             `json:"transactionCount"`
}

// CategoryBreakdown sums the scope's expenses per category. Percentages are
// shares of total expense spend, rounded to two decimals; when total spend is
// zero every percentage is zero. Rows are ordered by total descending, then
// category ascending.
func (s *Service) CategoryBreakdown(ctx context.Context, scope Scope) ([]CategorySpend, error) {
	txs, err := s.fetch(ctx, scope, kindPtr(domain.KindExpense))
	if err != nil {
		return nil, fmt.Errorf("CategoryBreakdown: %w", err)
	}
	return categoryBreakdown(txs), nil
}

func categoryBreakdown(txs []domain.Transaction) []CategorySpend {
	totals := make(map[string]*CategorySpend)
	grand := decimal.Zero

	for _, t := range txs {
		if !t.IsExpense() || t.Category == nil {
			continue
		}
		row, ok := totals[*t.Category]
		if !ok {
			row = &CategorySpend{Category: *t.Category, TotalAmount: decimal.Zero, Percentage: decimal.Zero}
			totals[*t.Category] = row
		}
		row.TotalAmount = row.TotalAmount.Add(t.Amount)
		row.TransactionCount++
		grand = grand.Add(t.Amount)
	}

	out := make([]CategorySpend, 0, len(totals))
	for _, row := range totals {
		if grand.IsPositive() {
			row.Percentage = row.TotalAmount.Div(grand).Mul(hundred).Round(2)
		}
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Trends groups the scope's transactions into calendar buckets and reports
// income, expenses and savings per bucket. Buckets with no transactions are
// omitted; callers needing a dense series must backfill. Points are ordered
// by bucket start ascending.
func (s *Service) Trends(ctx context.Context, scope Scope, bucket TrendBucket) ([]TrendPoint, error) {
	if !bucket.Valid() {
		return nil, fmt.Errorf("Trends: bucket %q: %w", bucket, ErrInvalidRange)
	}
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return nil, fmt.Errorf("Trends: %w", err)
	}
	return trends(txs, bucket), nil
}

func trends(txs []domain.Transaction, bucket TrendBucket) []TrendPoint {
	points := make(map[time.Time]*TrendPoint)

	for _, t := range txs {
		start := bucketStart(t.OccurredAt, bucket)
		p, ok := points[start]
		if !ok {
			p = &TrendPoint{BucketStart: start, Income: decimal.Zero, Expenses: decimal.Zero}
			points[start] = p
		}
		if t.IsIncome() {
			p.Income = p.Income.Add(t.Amount)
		} else {
			p.Expenses = p.Expenses.Add(t.Amount)
		}
	}

	out := make([]TrendPoint, 0, len(points))
	for _, p := range points {
		p.Savings = p.Income.Sub(p.Expenses)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out
}

// Summary reduces the scope to income, expense and savings totals. An empty
// scope returns zeros, never an error.
func (s *Service) Summary(ctx context.Context, scope Scope) (Summary, error) {
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("Summary: %w", err)
	}
	return summarize(txs), nil
}

func summarize(txs []domain.Transaction) Summary {
	sum := Summary{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero}
	for _, t := range txs {
		if t.IsIncome() {
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		} else {
			sum.TotalExpenses = sum.TotalExpenses.Add(t.Amount)
		}
		sum.TransactionCount++
	}
	sum.Savings = sum.TotalIncome.Sub(sum.TotalExpenses)
	return sum
}

// bucketStart truncates t to the start of its calendar bucket, in UTC.
func bucketStart(t time.Time, bucket TrendBucket) time.Time {
	t = t.UTC()
	switch bucket {
	case BucketWeek:
		day := dayStart(t)
		return day.AddDate(0, 0, -(domain.ISOWeekday(day) - 1))
	case BucketMonth:
		return monthStart(t)
	default:
		return dayStart(t)
	}
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
