package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

const testOwner = "3f9d7a52-1c44-4e0b-9f3a-8b2d5e6c7a90"

// day builds a mid-day UTC timestamp so bucket truncation is exercised.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func expense(amount, category string, at time.Time) domain.Transaction {
	tx := domain.Transaction{
		ID:         uuid.NewString(),
		OwnerID:    testOwner,
		OccurredAt: at,
		Amount:     decimal.RequireFromString(amount),
		Kind:       domain.KindExpense,
	}
	if category != "" {
		tx.Category = &category
	}
	return tx
}

func income(amount string, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:         uuid.NewString(),
		OwnerID:    testOwner,
		OccurredAt: at,
		Amount:     decimal.RequireFromString(amount),
		Kind:       domain.KindIncome,
	}
}

func wantDec(t *testing.T, got decimal.Decimal, want string, label string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestSummarize(t *testing.T) {
	txs := []domain.Transaction{
		income("500", day(2026, time.March, 1)),
		expense("100", "Food", day(2026, time.March, 2)),
	}

	sum := summarize(txs)

	wantDec(t, sum.TotalIncome, "500", "TotalIncome")
	wantDec(t, sum.TotalExpenses, "100", "TotalExpenses")
	wantDec(t, sum.Savings, "400", "Savings")
	if sum.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", sum.TransactionCount)
	}

	// savings is always income minus expenses
	if !sum.Savings.Equal(sum.TotalIncome.Sub(sum.TotalExpenses)) {
		t.Error("Savings != TotalIncome - TotalExpenses")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := summarize(nil)
	wantDec(t, sum.TotalIncome, "0", "TotalIncome")
	wantDec(t, sum.TotalExpenses, "0", "TotalExpenses")
	wantDec(t, sum.Savings, "0", "Savings")
	if sum.TransactionCount != 0 {
		t.Errorf("TransactionCount = %d, want 0", sum.TransactionCount)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []domain.Transaction{
		expense("50", "Food", day(2026, time.March, 1)),
		expense("30", "Transport", day(2026, time.March, 2)),
		expense("20", "Entertainment", day(2026, time.March, 3)),
		expense("10", "", day(2026, time.March, 4)), // uncategorized, excluded
		income("500", day(2026, time.March, 5)),     // income never appears
	}

	rows := categoryBreakdown(txs)

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Category != "Food" || rows[1].Category != "Transport" || rows[2].Category != "Entertainment" {
		t.Errorf("unexpected order: %s, %s, %s", rows[0].Category, rows[1].Category, rows[2].Category)
	}
	wantDec(t, rows[0].Percentage, "50", "Food percentage")
	wantDec(t, rows[1].Percentage, "30", "Transport percentage")
	wantDec(t, rows[2].Percentage, "20", "Entertainment percentage")

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Percentage)
	}
	wantDec(t, total, "100", "percentage sum")
}

func TestCategoryBreakdownSingleCategory(t *testing.T) {
	txs := []domain.Transaction{
		expense("100", "Food", day(2026, time.March, 2)),
		income("500", day(2026, time.March, 1)),
	}

	rows := categoryBreakdown(txs)

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	wantDec(t, rows[0].TotalAmount, "100", "TotalAmount")
	wantDec(t, rows[0].Percentage, "100", "Percentage")
	if rows[0].TransactionCount != 1 {
		t.Errorf("TransactionCount = %d, want 1", rows[0].TransactionCount)
	}
}

func TestCategoryBreakdownTieBreaksByName(t *testing.T) {
	txs := []domain.Transaction{
		expense("25", "Zoo", day(2026, time.March, 1)),
		expense("25", "Art", day(2026, time.March, 2)),
	}

	rows := categoryBreakdown(txs)

	if len(rows) != 2 || rows[0].Category != "Art" || rows[1].Category != "Zoo" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	if rows := categoryBreakdown(nil); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestTrendsBuckets(t *testing.T) {
	// 2026-01-05 is a Monday.
	txs := []domain.Transaction{
		income("100", day(2026, time.January, 6)),
		expense("40", "Food", day(2026, time.January, 6)),
		expense("10", "Food", day(2026, time.January, 8)),
		expense("5", "Food", day(2026, time.February, 2)),
	}

	tests := []struct {
		name    string
		bucket  TrendBucket
		starts  []time.Time
		savings []string
	}{
		{
			name:   "day",
			bucket: BucketDay,
			starts: []time.Time{
				time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.January, 8, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC),
			},
			savings: []string{"60", "-10", "-5"},
		},
		{
			name:   "week starts Monday",
			bucket: BucketWeek,
			starts: []time.Time{
				time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC),
			},
			savings: []string{"50", "-5"},
		},
		{
			name:   "month",
			bucket: BucketMonth,
			starts: []time.Time{
				time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			},
			savings: []string{"50", "-5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := trends(txs, tt.bucket)
			if len(points) != len(tt.starts) {
				t.Fatalf("got %d points, want %d", len(points), len(tt.starts))
			}
			for i, p := range points {
				if !p.BucketStart.Equal(tt.starts[i]) {
					t.Errorf("point %d start = %s, want %s", i, p.BucketStart, tt.starts[i])
				}
				wantDec(t, p.Savings, tt.savings[i], "savings")
				if !p.Savings.Equal(p.Income.Sub(p.Expenses)) {
					t.Errorf("point %d: savings != income - expenses", i)
				}
			}
		})
	}
}

func TestTrendsDeterministic(t *testing.T) {
	txs := []domain.Transaction{
		expense("40", "Food", day(2026, time.January, 6)),
		income("100", day(2026, time.January, 6)),
		expense("5", "Food", day(2026, time.February, 2)),
	}

	first := trends(txs, BucketMonth)
	for i := 0; i < 5; i++ {
		again := trends(txs, BucketMonth)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d points, want %d", i, len(again), len(first))
		}
		for j := range again {
			if !again[j].BucketStart.Equal(first[j].BucketStart) || !again[j].Savings.Equal(first[j].Savings) {
				t.Fatalf("run %d: point %d differs", i, j)
			}
		}
	}
}
