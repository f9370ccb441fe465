package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

func TestForecastEmpty(t *testing.T) {
	f := forecast(nil)

	if f.BasedOnMonths != 0 {
		t.Errorf("BasedOnMonths = %d, want 0", f.BasedOnMonths)
	}
	if f.Confidence != lowHistoryConfidence {
		t.Errorf("Confidence = %v, want %v", f.Confidence, lowHistoryConfidence)
	}
	wantDec(t, f.PredictedExpenses, "0", "PredictedExpenses")
	if f.Method != "moving_average" {
		t.Errorf("Method = %q, want moving_average", f.Method)
	}
	if f.ByCategory == nil {
		t.Error("ByCategory is nil, want empty map")
	}
}

func TestForecastTwoMonths(t *testing.T) {
	txs := []domain.Transaction{
		income("1000", day(2026, time.January, 5)),
		expense("400", "Rent", day(2026, time.January, 10)),
		income("1000", day(2026, time.February, 5)),
		expense("600", "Rent", day(2026, time.February, 10)),
	}

	f := forecast(txs)

	if f.BasedOnMonths != 2 {
		t.Errorf("BasedOnMonths = %d, want 2", f.BasedOnMonths)
	}
	if f.Confidence != lowHistoryConfidence {
		t.Errorf("Confidence = %v, want low-history constant %v", f.Confidence, lowHistoryConfidence)
	}
	wantDec(t, f.PredictedIncome, "1000", "PredictedIncome")
	wantDec(t, f.PredictedExpenses, "500", "PredictedExpenses")
	wantDec(t, f.PredictedSavings, "500", "PredictedSavings")
	wantDec(t, f.ByCategory["Rent"], "500", "Rent mean")
}

func TestForecastFullWindow(t *testing.T) {
	txs := []domain.Transaction{
		expense("500", "Rent", day(2026, time.January, 10)),
		expense("500", "Rent", day(2026, time.February, 10)),
		expense("500", "Rent", day(2026, time.March, 10)),
		expense("120", "Food", day(2026, time.March, 15)),
	}

	f := forecast(txs)

	if f.BasedOnMonths != 3 {
		t.Errorf("BasedOnMonths = %d, want 3", f.BasedOnMonths)
	}
	wantDec(t, f.PredictedExpenses, "540", "PredictedExpenses")
	wantDec(t, f.ByCategory["Rent"], "500", "Rent mean")
	// Food only appears in one month; its mean covers that month alone.
	wantDec(t, f.ByCategory["Food"], "120", "Food mean")

	if f.Confidence <= lowHistoryConfidence || f.Confidence > 0.9 {
		t.Errorf("Confidence = %v, want within (%v, 0.9]", f.Confidence, lowHistoryConfidence)
	}
}

func TestForecastOnlyUsesTrailingWindow(t *testing.T) {
	txs := []domain.Transaction{
		expense("9999", "Rent", day(2025, time.June, 1)), // far outside the window
		expense("500", "Rent", day(2026, time.January, 10)),
		expense("500", "Rent", day(2026, time.February, 10)),
		expense("500", "Rent", day(2026, time.March, 10)),
	}

	f := forecast(txs)

	if f.BasedOnMonths != 3 {
		t.Errorf("BasedOnMonths = %d, want 3", f.BasedOnMonths)
	}
	wantDec(t, f.PredictedExpenses, "500", "PredictedExpenses")
}

func TestConfidenceMonotonicInVariance(t *testing.T) {
	flat := monthPoints("500", "500", "500")
	bumpy := monthPoints("100", "500", "900")

	cFlat := confidenceFrom(flat)
	cBumpy := confidenceFrom(bumpy)

	if math.Abs(cFlat-0.9) > 1e-9 {
		t.Errorf("zero-variance confidence = %v, want 0.9", cFlat)
	}
	if cBumpy >= cFlat {
		t.Errorf("higher variance should lower confidence: %v >= %v", cBumpy, cFlat)
	}
	if cBumpy < lowHistoryConfidence {
		t.Errorf("confidence %v below floor %v", cBumpy, lowHistoryConfidence)
	}
}

func monthPoints(expenses ...string) []MonthPoint {
	out := make([]MonthPoint, len(expenses))
	for i, e := range expenses {
		out[i] = MonthPoint{
			MonthStart: time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Expenses:   decimal.RequireFromString(e),
		}
	}
	return out
}
