package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

const (
	owner   = "3f9d7a52-1c44-4e0b-9f3a-8b2d5e6c7a90"
	someone = "9b1ce2e4-55aa-4d7e-8a0f-0d3c1a2b4e5f"
)

func tx(id, ownerID string, kind domain.TransactionKind, category string, at time.Time) domain.Transaction {
	t := domain.Transaction{
		ID:         id,
		OwnerID:    ownerID,
		OccurredAt: at,
		Amount:     decimal.NewFromInt(10),
		Kind:       kind,
	}
	if category != "" {
		t.Category = &category
	}
	return t
}

func seedTransactions(t *testing.T, s *Store) {
	t.Helper()
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	profileID := "p1"
	withProfile := tx("t2", owner, domain.KindExpense, "Food", feb)
	withProfile.ProfileID = &profileID

	txs := []domain.Transaction{
		tx("t1", owner, domain.KindIncome, "", jan),
		withProfile,
		tx("t3", owner, domain.KindExpense, "Transport", mar),
		tx("t4", someone, domain.KindExpense, "Food", feb),
	}
	if err := s.InsertTransactions(context.Background(), txs); err != nil {
		t.Fatal(err)
	}
}

func TestFindTransactionsFilters(t *testing.T) {
	s := NewStore()
	seedTransactions(t, s)
	ctx := context.Background()

	kind := domain.KindExpense
	category := "Food"
	profileID := "p1"
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  store.TransactionFilter
		wantIDs []string
	}{
		{"owner only", store.TransactionFilter{OwnerID: owner}, []string{"t1", "t2", "t3"}},
		{"by kind", store.TransactionFilter{OwnerID: owner, Kind: &kind}, []string{"t2", "t3"}},
		{"by category", store.TransactionFilter{OwnerID: owner, Category: &category}, []string{"t2"}},
		{"by profile", store.TransactionFilter{OwnerID: owner, ProfileID: &profileID}, []string{"t2"}},
		{"by date window", store.TransactionFilter{OwnerID: owner, From: &from, To: &to}, []string{"t2"}},
		{"other owner", store.TransactionFilter{OwnerID: someone}, []string{"t4"}},
		{"unknown owner", store.TransactionFilter{OwnerID: "nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindTransactions: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("transaction %d = %s, want %s", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestInsertTransactionsAssignsIDs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.InsertTransactions(ctx, []domain.Transaction{
		tx("", owner, domain.KindExpense, "Food", time.Now().UTC()),
	})
	if err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}

	got, err := s.FindTransactions(ctx, store.TransactionFilter{OwnerID: owner})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID == "" {
		t.Errorf("expected one transaction with a generated id, got %+v", got)
	}
}

func TestInsertTransactionsRequiresOwner(t *testing.T) {
	s := NewStore()
	err := s.InsertTransactions(context.Background(), []domain.Transaction{
		tx("t1", "", domain.KindExpense, "Food", time.Now().UTC()),
	})
	if err == nil {
		t.Error("expected error for missing owner")
	}
}

func TestFindProfileOwnership(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := &domain.Profile{ID: "p1", OwnerID: owner, Name: "March", UploadedAt: time.Now().UTC()}
	if err := s.InsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	if _, err := s.FindProfile(ctx, "p1", owner); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := s.FindProfile(ctx, "p1", someone); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign lookup err = %v, want ErrNotFound", err)
	}
	if _, err := s.FindProfile(ctx, "missing", owner); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing lookup err = %v, want ErrNotFound", err)
	}
}

func TestListProfilesNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		p := &domain.Profile{ID: id, OwnerID: owner, Name: id, UploadedAt: base.AddDate(0, 0, i)}
		if err := s.InsertProfile(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListProfiles(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "new" || got[2].ID != "old" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestUpsertBudgetReplacesOnKey(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	created := start.AddDate(0, 0, -5)

	first := &domain.Budget{
		OwnerID:      owner,
		CategoryID:   "cat-food",
		CategoryName: "Food",
		Amount:       decimal.NewFromInt(200),
		Period:       domain.PeriodMonthly,
		PeriodStart:  start,
		PeriodEnd:    domain.PeriodEndFor(domain.PeriodMonthly, start),
		CreatedAt:    created,
	}
	if err := s.UpsertBudget(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := &domain.Budget{
		OwnerID:      owner,
		CategoryID:   "cat-food",
		CategoryName: "Food",
		Amount:       decimal.NewFromInt(300),
		Period:       domain.PeriodMonthly,
		PeriodStart:  start,
		PeriodEnd:    domain.PeriodEndFor(domain.PeriodMonthly, start),
	}
	if err := s.UpsertBudget(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindBudgets(ctx, store.BudgetFilter{OwnerID: owner})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d budgets, want 1 after upsert", len(got))
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Amount = %s, want 300", got[0].Amount)
	}
	if got[0].ID != first.ID {
		t.Errorf("ID changed on upsert: %s != %s", got[0].ID, first.ID)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Errorf("CreatedAt not preserved: %s", got[0].CreatedAt)
	}

	// A different period is a different budget.
	yearly := &domain.Budget{
		OwnerID:      owner,
		CategoryID:   "cat-food",
		CategoryName: "Food",
		Amount:       decimal.NewFromInt(2000),
		Period:       domain.PeriodYearly,
		PeriodStart:  start,
		PeriodEnd:    domain.PeriodEndFor(domain.PeriodYearly, start),
	}
	if err := s.UpsertBudget(ctx, yearly); err != nil {
		t.Fatal(err)
	}
	got, err = s.FindBudgets(ctx, store.BudgetFilter{OwnerID: owner})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d budgets, want 2", len(got))
	}
}

func TestDeleteBudget(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	b := &domain.Budget{
		OwnerID:      owner,
		CategoryID:   "cat-food",
		CategoryName: "Food",
		Amount:       decimal.NewFromInt(200),
		Period:       domain.PeriodMonthly,
		PeriodStart:  start,
		PeriodEnd:    domain.PeriodEndFor(domain.PeriodMonthly, start),
	}
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteBudget(ctx, b.ID, someone); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteBudget(ctx, b.ID, owner); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := s.DeleteBudget(ctx, b.ID, owner); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
