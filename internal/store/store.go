// Package store defines the persistence contracts the analytics engine and
// API handlers are written against. Implementations live in the memory,
// postgres and bigquery subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

// ErrNotFound is returned when a looked-up record does not exist or does not
// belong to the requesting owner. Implementations must not distinguish the
// two cases.
var ErrNotFound = errors.New("record not found")

// TransactionFilter narrows FindTransactions. OwnerID is mandatory; every
// other field is optional. From/To are inclusive.
type TransactionFilter struct {
	OwnerID   string
	ProfileID *string
	From      *time.Time
	To        *time.Time
	Kind      *domain.TransactionKind
	Category  *string
}

// TransactionStore is the read/write surface for the transaction ledger.
// The analytics engine only ever calls FindTransactions.
type TransactionStore interface {
	FindTransactions(ctx context.Context, f TransactionFilter) ([]domain.Transaction, error)
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
}

// ProfileStore resolves statement profiles by id and owner.
type ProfileStore interface {
	FindProfile(ctx context.Context, id, ownerID string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, ownerID string) ([]domain.Profile, error)
	InsertProfile(ctx context.Context, p *domain.Profile) error
}

// BudgetFilter narrows FindBudgets.
type BudgetFilter struct {
	OwnerID    string
	CategoryID *string
	Period     *domain.BudgetPeriod
}

// BudgetStore is the read/write surface for budget definitions. Upsert
// replaces any existing budget with the same (owner, category, period) key.
type BudgetStore interface {
	FindBudgets(ctx context.Context, f BudgetFilter) ([]domain.Budget, error)
	UpsertBudget(ctx context.Context, b *domain.Budget) error
	DeleteBudget(ctx context.Context, id, ownerID string) error
}
