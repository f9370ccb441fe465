package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a transaction. Amounts are always
// positive; the kind carries the sign.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is one of the two known kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is one ledger entry, already scoped to its owner. Category is
// set for expenses and nil for income.
type Transaction struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"-"`
	ProfileID   *string         `json:"statementId,omitempty"`
	OccurredAt  time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        TransactionKind `json:"type"`
	Category    *string         `json:"category,omitempty"`
	Merchant    *string         `json:"merchant,omitempty"`
	Account     *string         `json:"account,omitempty"`
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool { return t.Kind == KindExpense }

// IsIncome reports whether the transaction is an income entry.
func (t Transaction) IsIncome() bool { return t.Kind == KindIncome }

// CategoryName returns the category, or "" for uncategorized/income entries.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// ISOWeekday returns the ISO-8601 weekday number for t: 1=Monday .. 7=Sunday.
// This is the single weekday numbering used across all analytics output.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayName maps an ISO weekday number to its English name.
func WeekdayName(iso int) string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if iso < 1 || iso > 7 {
		return "Unknown"
	}
	return names[iso-1]
}
