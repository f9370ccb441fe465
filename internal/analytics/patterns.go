package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

// WeekdayPattern is the spending profile of one ISO weekday (1=Monday ..
// 7=Sunday).
type WeekdayPattern struct {
	DayOfWeek        int             `json:"dayOfWeek"`
	DayName          string          `json:"dayName"`
	AverageSpending  decimal.Decimal `json:"averageSpending"`
	TransactionCount int             `json:"transactionCount"`
}

// MonthPoint is one calendar month of income/expense/savings totals.
type MonthPoint struct {
	MonthStart time.Time       `json:"monthStart"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Savings    decimal.Decimal `json:"savings"`
}

// CategoryTrendPoint is one month of spend for a single category.
type CategoryTrendPoint struct {
	MonthStart time.Time       `json:"monthStart"`
	Amount     decimal.Decimal `json:"amount"`
}

// CategoryTrend is the month-by-month spend series of one category.
type CategoryTrend struct {
	Category string               `json:"category"`
	Points   []CategoryTrendPoint `json:"points"`
}

// YearComparison compares one calendar month's expenses against the same
// month a year earlier. ChangePercent is nil when the previous year has no
// spend for that month, keeping the payload machine-safe.
type YearComparison struct {
	MonthStart    time.Time        `json:"monthStart"`
	CurrentYear   decimal.Decimal  `json:"currentYear"`
	PreviousYear  decimal.Decimal  `json:"previousYear"`
	ChangePercent *decimal.Decimal `json:"changePercent"`
}

// WeeklyPatterns derives day-of-week spending statistics from the trailing
// weeks*7 calendar days. The window is anchored at the latest transaction
// date in scope rather than the wall clock, so the result is a pure function
// of the ledger. AverageSpending divides a weekday's expense total by the
// number of distinct calendar dates on that weekday that saw spending, which
// keeps partial weeks from skewing the average.
func (s *Service) WeeklyPatterns(ctx context.Context, scope Scope, weeks int) ([]WeekdayPattern, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("WeeklyPatterns: weeks %d: %w", weeks, ErrInvalidRange)
	}
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return nil, fmt.Errorf("WeeklyPatterns: %w", err)
	}
	return weeklyPatterns(txs, weeks), nil
}

func weeklyPatterns(txs []domain.Transaction, weeks int) []WeekdayPattern {
	anchor, ok := latestDate(txs)
	if !ok {
		return []WeekdayPattern{}
	}
	windowStart := anchor.AddDate(0, 0, -(weeks*7 - 1))

	type bucket struct {
		total decimal.Decimal
		count int
		dates map[time.Time]struct{}
	}
	byDay := make(map[int]*bucket)

	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		day := dayStart(t.OccurredAt)
		if day.Before(windowStart) || day.After(anchor) {
			continue
		}
		iso := domain.ISOWeekday(day)
		b, exists := byDay[iso]
		if !exists {
			b = &bucket{total: decimal.Zero, dates: make(map[time.Time]struct{})}
			byDay[iso] = b
		}
		b.total = b.total.Add(t.Amount)
		b.count++
		b.dates[day] = struct{}{}
	}

	out := make([]WeekdayPattern, 0, len(byDay))
	for iso := 1; iso <= 7; iso++ {
		b, exists := byDay[iso]
		if !exists {
			continue
		}
		avg := b.total.Div(decimal.NewFromInt(int64(len(b.dates)))).Round(2)
		out = append(out, WeekdayPattern{
			DayOfWeek:        iso,
			DayName:          domain.WeekdayName(iso),
			AverageSpending:  avg,
			TransactionCount: b.count,
		})
	}
	return out
}

// MonthlyTrends reports income/expense/savings per calendar month over the
// trailing months window ending at the latest transaction date in scope.
// Months without transactions are omitted.
func (s *Service) MonthlyTrends(ctx context.Context, scope Scope, months int) ([]MonthPoint, error) {
	if months <= 0 {
		return nil, fmt.Errorf("MonthlyTrends: months %d: %w", months, ErrInvalidRange)
	}
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return nil, fmt.Errorf("MonthlyTrends: %w", err)
	}
	return monthlyTrends(txs, months), nil
}

func monthlyTrends(txs []domain.Transaction, months int) []MonthPoint {
	windowed := monthWindow(txs, months)
	points := make(map[time.Time]*MonthPoint)

	for _, t := range windowed {
		start := monthStart(t.OccurredAt)
		p, ok := points[start]
		if !ok {
			p = &MonthPoint{MonthStart: start, Income: decimal.Zero, Expenses: decimal.Zero}
			points[start] = p
		}
		if t.IsIncome() {
			p.Income = p.Income.Add(t.Amount)
		} else {
			p.Expenses = p.Expenses.Add(t.Amount)
		}
	}

	out := make([]MonthPoint, 0, len(points))
	for _, p := range points {
		p.Savings = p.Income.Sub(p.Expenses)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthStart.Before(out[j].MonthStart) })
	return out
}

// CategoryTrends reports the monthly spend series of the top expense
// categories over the trailing months window. Top categories are ranked by
// total spend in the window, ties broken by name ascending.
func (s *Service) CategoryTrends(ctx context.Context, scope Scope, topCategories, months int) ([]CategoryTrend, error) {
	if topCategories <= 0 || months <= 0 {
		return nil, fmt.Errorf("CategoryTrends: top %d months %d: %w", topCategories, months, ErrInvalidRange)
	}
	txs, err := s.fetch(ctx, scope, kindPtr(domain.KindExpense))
	if err != nil {
		return nil, fmt.Errorf("CategoryTrends: %w", err)
	}
	return categoryTrends(txs, topCategories, months), nil
}

func categoryTrends(txs []domain.Transaction, topCategories, months int) []CategoryTrend {
	windowed := monthWindow(txs, months)

	totals := make(map[string]decimal.Decimal)
	monthly := make(map[string]map[time.Time]decimal.Decimal)
	for _, t := range windowed {
		if !t.IsExpense() || t.Category == nil {
			continue
		}
		cat := *t.Category
		totals[cat] = totals[cat].Add(t.Amount)
		if monthly[cat] == nil {
			monthly[cat] = make(map[time.Time]decimal.Decimal)
		}
		ms := monthStart(t.OccurredAt)
		monthly[cat][ms] = monthly[cat][ms].Add(t.Amount)
	}

	ranked := make([]string, 0, len(totals))
	for cat := range totals {
		ranked = append(ranked, cat)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := totals[ranked[i]].Cmp(totals[ranked[j]]); c != 0 {
			return c > 0
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > topCategories {
		ranked = ranked[:topCategories]
	}

	out := make([]CategoryTrend, 0, len(ranked))
	for _, cat := range ranked {
		points := make([]CategoryTrendPoint, 0, len(monthly[cat]))
		for ms, amount := range monthly[cat] {
			points = append(points, CategoryTrendPoint{MonthStart: ms, Amount: amount})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].MonthStart.Before(points[j].MonthStart) })
		out = append(out, CategoryTrend{Category: cat, Points: points})
	}
	return out
}

// YearOverYear compares monthly expense totals of year against year-1. A
// month appears when either year has spend in it; rows are ordered by month.
func (s *Service) YearOverYear(ctx context.Context, scope Scope, year int) ([]YearComparison, error) {
	txs, err := s.fetch(ctx, scope, kindPtr(domain.KindExpense))
	if err != nil {
		return nil, fmt.Errorf("YearOverYear: %w", err)
	}
	return yearOverYear(txs, year), nil
}

func yearOverYear(txs []domain.Transaction, year int) []YearComparison {
	current := make(map[time.Month]decimal.Decimal)
	previous := make(map[time.Month]decimal.Decimal)

	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		ts := t.OccurredAt.UTC()
		switch ts.Year() {
		case year:
			current[ts.Month()] = current[ts.Month()].Add(t.Amount)
		case year - 1:
			previous[ts.Month()] = previous[ts.Month()].Add(t.Amount)
		}
	}

	out := make([]YearComparison, 0, 12)
	for m := time.January; m <= time.December; m++ {
		cur, hasCur := current[m]
		prev, hasPrev := previous[m]
		if !hasCur && !hasPrev {
			continue
		}
		row := YearComparison{
			MonthStart:   time.Date(year, m, 1, 0, 0, 0, 0, time.UTC),
			CurrentYear:  cur,
			PreviousYear: prev,
		}
		if prev.IsPositive() {
			change := cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
			row.ChangePercent = &change
		}
		out = append(out, row)
	}
	return out
}

// monthWindow restricts txs to the trailing months calendar months ending at
// the month of the latest transaction.
func monthWindow(txs []domain.Transaction, months int) []domain.Transaction {
	anchor, ok := latestDate(txs)
	if !ok {
		return nil
	}
	windowStart := monthStart(anchor).AddDate(0, -(months - 1), 0)

	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if !dayStart(t.OccurredAt).Before(windowStart) {
			out = append(out, t)
		}
	}
	return out
}

// latestDate returns the most recent transaction date (day granularity, UTC).
func latestDate(txs []domain.Transaction) (time.Time, bool) {
	var latest time.Time
	for _, t := range txs {
		if day := dayStart(t.OccurredAt); day.After(latest) {
			latest = day
		}
	}
	return latest, !latest.IsZero()
}
