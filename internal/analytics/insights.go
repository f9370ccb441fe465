package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

// Severity classifies how urgent an insight is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Insight is one human-readable observation produced by the rule set.
type Insight struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// savingsRateTarget is the savings-rate threshold separating the warning and
// success insights.
var savingsRateTarget = decimal.NewFromFloat(0.20)

// Insights evaluates a fixed, independent rule set against the scope's
// summary statistics. Rules may fire together; an empty scope produces an
// empty list, never an error.
func (s *Service) Insights(ctx context.Context, scope Scope) ([]Insight, error) {
	txs, err := s.fetch(ctx, scope, nil)
	if err != nil {
		return nil, fmt.Errorf("Insights: %w", err)
	}
	return insights(txs), nil
}

func insights(txs []domain.Transaction) []Insight {
	out := []Insight{}
	if len(txs) == 0 {
		return out
	}

	sum := summarize(txs)

	if sum.TotalIncome.IsPositive() {
		rate := sum.Savings.Div(sum.TotalIncome)
		pct := rate.Mul(hundred).Round(1)
		if rate.LessThan(savingsRateTarget) {
			out = append(out, Insight{
				Type:     "low_savings_rate",
				Title:    "Low savings rate",
				Message:  fmt.Sprintf("You are saving %s%% of your income. Aim for at least 20%%.", pct),
				Severity: SeverityWarning,
			})
		} else {
			out = append(out, Insight{
				Type:     "great_savings",
				Title:    "Great savings",
				Message:  fmt.Sprintf("You are saving %s%% of your income. Keep it up.", pct),
				Severity: SeveritySuccess,
			})
		}
	}

	if sum.TotalExpenses.GreaterThan(sum.TotalIncome) {
		out = append(out, Insight{
			Type:     "excessive_spending",
			Title:    "Spending exceeds income",
			Message:  "Your expenses exceed your income for this period. Consider reviewing your spending habits.",
			Severity: SeverityError,
		})
	}

	if breakdown := categoryBreakdown(txs); len(breakdown) > 0 {
		top := breakdown[0]
		out = append(out, Insight{
			Type:     "highest_spending_category",
			Title:    "Highest spending category",
			Message:  fmt.Sprintf("Your highest spending category is %s (%s).", top.Category, top.TotalAmount),
			Severity: SeverityInfo,
		})
	}

	return out
}
