package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// BudgetStatus classifies how far through a budget the actual spend is.
type BudgetStatus string

const (
	StatusOnTrack     BudgetStatus = "on_track"
	StatusApproaching BudgetStatus = "approaching_budget"
	StatusOverBudget  BudgetStatus = "over_budget"
)

var approachingThreshold = decimal.NewFromInt(80)

// BudgetComparison joins one budget to its actual spending in the compared
// window. Remaining may be negative; PercentageUsed is uncapped.
type BudgetComparison struct {
	Budget         domain.Budget   `json:"budget"`
	ActualSpending decimal.Decimal `json:"actualSpending"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentageUsed"`
	IsOverBudget   bool            `json:"isOverBudget"`
	Status         BudgetStatus    `json:"status"`
}

// DateWindow is an inclusive comparison window.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// CompareBudgets joins the owner's budgets for period against actual
// category spend. The window for each budget is, in order of precedence: the
// explicit window argument, the scope's own date window, the budget's period
// start/end. Budgets with non-positive amounts are rejected with
// ErrInvalidBudget before any division happens.
func (s *Service) CompareBudgets(ctx context.Context, scope Scope, period domain.BudgetPeriod, window *DateWindow) ([]BudgetComparison, error) {
	if window != nil && window.Start.After(window.End) {
		return nil, fmt.Errorf("CompareBudgets: window start after end: %w", ErrInvalidRange)
	}

	budgets, err := s.budgets.FindBudgets(ctx, store.BudgetFilter{OwnerID: scope.OwnerID, Period: &period})
	if err != nil {
		return nil, fmt.Errorf("CompareBudgets: find budgets: %w", err)
	}
	for _, b := range budgets {
		if !b.Amount.IsPositive() {
			return nil, fmt.Errorf("CompareBudgets: budget %s amount %s: %w", b.ID, b.Amount, ErrInvalidBudget)
		}
	}

	// One unbounded fetch; each budget's window is applied in memory so all
	// comparisons see the same snapshot.
	expenses, err := s.txs.FindTransactions(ctx, store.TransactionFilter{
		OwnerID:   scope.OwnerID,
		ProfileID: scope.ProfileID,
		Kind:      kindPtr(domain.KindExpense),
	})
	if err != nil {
		return nil, fmt.Errorf("CompareBudgets: find transactions: %w", err)
	}

	out := make([]BudgetComparison, 0, len(budgets))
	for _, b := range budgets {
		w := windowFor(b, scope, window)
		actual := decimal.Zero
		for _, t := range expenses {
			if t.CategoryName() != b.CategoryName {
				continue
			}
			ts := t.OccurredAt.UTC()
			if ts.Before(w.Start) || ts.After(w.End) {
				continue
			}
			actual = actual.Add(t.Amount)
		}
		out = append(out, compare(b, actual))
	}
	return out, nil
}

func windowFor(b domain.Budget, scope Scope, explicit *DateWindow) DateWindow {
	if explicit != nil {
		return *explicit
	}
	if scope.Bounded() {
		return DateWindow{Start: scope.From.UTC(), End: scope.To.UTC()}
	}
	return DateWindow{Start: b.PeriodStart.UTC(), End: b.PeriodEnd.UTC()}
}

// compare classifies one budget against its actual spending. Exactly 80% is
// approaching_budget; exactly 100% is still approaching_budget; anything
// above 100% is over_budget.
func compare(b domain.Budget, actual decimal.Decimal) BudgetComparison {
	pct := actual.Div(b.Amount).Mul(hundred).Round(2)
	over := pct.GreaterThan(hundred)

	status := StatusOnTrack
	switch {
	case over:
		status = StatusOverBudget
	case pct.GreaterThanOrEqual(approachingThreshold):
		status = StatusApproaching
	}

	return BudgetComparison{
		Budget:         b,
		ActualSpending: actual,
		Remaining:      b.Amount.Sub(actual),
		PercentageUsed: pct,
		IsOverBudget:   over,
		Status:         status,
	}
}
