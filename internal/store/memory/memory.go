// Package memory provides an in-memory implementation of the store
// contracts. It is safe for concurrent use and is the default backend for
// development mode and the engine test suite. Data is lost on restart - for
// persistence, use the postgres or bigquery backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// Store keeps transactions, profiles and budgets in mutex-guarded maps.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
	profiles     map[string]domain.Profile
	budgets      map[string]domain.Budget
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]domain.Transaction),
		profiles:     make(map[string]domain.Profile),
		budgets:      make(map[string]domain.Budget),
	}
}

// FindTransactions implements store.TransactionStore. Results are ordered by
// occurrence time ascending, then id, for deterministic output.
func (s *Store) FindTransactions(ctx context.Context, f store.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerID != f.OwnerID {
			continue
		}
		if f.ProfileID != nil && (t.ProfileID == nil || *t.ProfileID != *f.ProfileID) {
			continue
		}
		if f.From != nil && t.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.OccurredAt.After(*f.To) {
			continue
		}
		if f.Kind != nil && t.Kind != *f.Kind {
			continue
		}
		if f.Category != nil && t.CategoryName() != *f.Category {
			continue
		}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].OccurredAt.Before(result[j].OccurredAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// InsertTransactions implements store.TransactionStore. Transactions without
// an id are assigned one.
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range txs {
		if t.OwnerID == "" {
			return fmt.Errorf("InsertTransactions: owner ID is required")
		}
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		s.transactions[t.ID] = t
	}
	return nil
}

// FindProfile implements store.ProfileStore. A profile owned by a different
// owner is reported identically to a missing one.
func (s *Store) FindProfile(ctx context.Context, id, ownerID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.profiles[id]
	if !exists || p.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	found := p
	return &found, nil
}

// ListProfiles implements store.ProfileStore.
func (s *Store) ListProfiles(ctx context.Context, ownerID string) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Profile, 0)
	for _, p := range s.profiles {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.After(result[j].UploadedAt) })
	return result, nil
}

// InsertProfile implements store.ProfileStore.
func (s *Store) InsertProfile(ctx context.Context, p *domain.Profile) error {
	if p.OwnerID == "" {
		return fmt.Errorf("InsertProfile: owner ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.profiles[p.ID] = *p
	return nil
}

// FindBudgets implements store.BudgetStore. Results are ordered by period
// start descending, the order the budgets listing shows them in.
func (s *Store) FindBudgets(ctx context.Context, f store.BudgetFilter) ([]domain.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Budget, 0)
	for _, b := range s.budgets {
		if b.OwnerID != f.OwnerID {
			continue
		}
		if f.CategoryID != nil && b.CategoryID != *f.CategoryID {
			continue
		}
		if f.Period != nil && b.Period != *f.Period {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PeriodStart.Equal(result[j].PeriodStart) {
			return result[i].PeriodStart.After(result[j].PeriodStart)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// UpsertBudget implements store.BudgetStore: one budget per
// (owner, category, period) key, replaced in place on conflict.
func (s *Store) UpsertBudget(ctx context.Context, b *domain.Budget) error {
	if b.OwnerID == "" {
		return fmt.Errorf("UpsertBudget: owner ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.budgets {
		if existing.OwnerID == b.OwnerID && existing.CategoryID == b.CategoryID && existing.Period == b.Period {
			b.ID = id
			b.CreatedAt = existing.CreatedAt
			s.budgets[id] = *b
			return nil
		}
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.budgets[b.ID] = *b
	return nil
}

// DeleteBudget implements store.BudgetStore.
func (s *Store) DeleteBudget(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.budgets[id]
	if !exists || b.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

// Interface guards.
var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.ProfileStore     = (*Store)(nil)
	_ store.BudgetStore      = (*Store)(nil)
)
