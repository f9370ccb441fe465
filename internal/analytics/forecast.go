package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

// forecastWindowMonths is the trailing window the forecast averages over.
const forecastWindowMonths = 3

// lowHistoryConfidence is the fixed confidence reported when less than a
// full window of history exists, since variance over a truncated window says
// little about the next month.
const lowHistoryConfidence = 0.30

// Forecast is a next-month projection. It is a transparent moving average of
// the trailing monthly totals, not a fitted statistical model; Confidence is
// a bounded heuristic, not an error bar.
type Forecast struct {
	PredictedExpenses decimal.Decimal            `json:"predictedExpenses"`
	PredictedIncome   decimal.Decimal            `json:"predictedIncome"`
	PredictedSavings  decimal.Decimal            `json:"predictedSavings"`
	Confidence        float64                    `json:"confidence"`
	BasedOnMonths     int                        `json:"basedOnMonths"`
	ByCategory        map[string]decimal.Decimal `json:"byCategory"`
	Method            string                     `json:"method"`
}

// Forecast projects next-period income and spending as the arithmetic mean of
// the trailing three full calendar months (fewer when less history exists;
// BasedOnMonths reports the count actually used). Confidence decreases
// monotonically with the coefficient of variation of the monthly expense
// totals and is lowHistoryConfidence when the window is not full.
func (s *Service) Forecast(ctx context.Context, scope Scope) (Forecast, error) {
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("Forecast: %w", err)
	}
	return forecast(txs), nil
}

func forecast(txs []domain.Transaction) Forecast {
	months := monthlyTrends(txs, forecastWindowMonths)
	out := Forecast{
		PredictedExpenses: decimal.Zero,
		PredictedIncome:   decimal.Zero,
		PredictedSavings:  decimal.Zero,
		Confidence:        lowHistoryConfidence,
		BasedOnMonths:     len(months),
		ByCategory:        map[string]decimal.Decimal{},
		Method:            "moving_average",
	}
	if len(months) == 0 {
		return out
	}

	n := decimal.NewFromInt(int64(len(months)))
	totalIncome, totalExpenses := decimal.Zero, decimal.Zero
	for _, m := range months {
		totalIncome = totalIncome.Add(m.Income)
		totalExpenses = totalExpenses.Add(m.Expenses)
	}
	out.PredictedIncome = totalIncome.Div(n).Round(2)
	out.PredictedExpenses = totalExpenses.Div(n).Round(2)
	out.PredictedSavings = out.PredictedIncome.Sub(out.PredictedExpenses)

	// Per-category mean over the months the category actually has spend in,
	// mirroring the headline window.
	for _, trend := range categoryTrends(onlyExpenses(txs), math.MaxInt, forecastWindowMonths) {
		sum := decimal.Zero
		for _, p := range trend.Points {
			sum = sum.Add(p.Amount)
		}
		if len(trend.Points) > 0 {
			out.ByCategory[trend.Category] = sum.Div(decimal.NewFromInt(int64(len(trend.Points)))).Round(2)
		}
	}

	if len(months) >= forecastWindowMonths {
		out.Confidence = confidenceFrom(months)
	}
	return out
}

// confidenceFrom maps the coefficient of variation of the monthly expense
// totals into (0, 0.9]: confidence = 0.9 / (1 + cv), floored at
// lowHistoryConfidence. Lower variance means higher confidence.
func confidenceFrom(months []MonthPoint) float64 {
	values := make([]float64, len(months))
	var mean float64
	for i, m := range months {
		values[i] = m.Expenses.InexactFloat64()
		mean += values[i]
	}
	mean /= float64(len(values))
	if mean <= 0 {
		return lowHistoryConfidence
	}

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	cv := math.Sqrt(variance) / mean

	c := 0.9 / (1 + cv)
	if c < lowHistoryConfidence {
		c = lowHistoryConfidence
	}
	return c
}

func onlyExpenses(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.IsExpense() {
			out = append(out, t)
		}
	}
	return out
}
