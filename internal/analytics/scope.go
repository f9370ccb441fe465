// Package analytics computes derived financial metrics over a transaction
// ledger: category breakdowns, bucketed trends, day-of-week patterns,
// year-over-year comparisons, a moving-average forecast, rule-based insights
// and budget-vs-actual comparisons.
//
// Every computation is a deterministic, side-effect-free function of the
// transaction set it is handed; the engine holds no state between calls and
// is safe for concurrent use.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// Scope is the resolved (owner, profile, date-window) triple every analytics
// computation is evaluated against. It is built once per request by Resolve
// and passed by value downstream. From/To are inclusive.
type Scope struct {
	OwnerID   string
	ProfileID *string
	From      *time.Time
	To        *time.Time
}

// Bounded reports whether the scope carries an explicit date window.
func (s Scope) Bounded() bool { return s.From != nil && s.To != nil }

// Service wires the engine to its read-only collaborators. The zero value is
// not usable; construct with NewService.
type Service struct {
	txs      store.TransactionStore
	profiles store.ProfileStore
	budgets  store.BudgetStore
}

// NewService returns an engine bound to the given stores.
func NewService(txs store.TransactionStore, profiles store.ProfileStore, budgets store.BudgetStore) *Service {
	return &Service{txs: txs, profiles: profiles, budgets: budgets}
}

// Resolve builds the scope for ownerID. When profileID is set the profile
// must belong to ownerID; a missing or foreign profile yields
// ErrNotFoundOrForbidden. When the caller gives no explicit dates, the
// profile's statement period (if any) becomes the window; explicit dates
// always win. With neither profile nor dates the scope is unbounded.
func (s *Service) Resolve(ctx context.Context, ownerID string, profileID *string, from, to *time.Time) (Scope, error) {
	scope := Scope{OwnerID: ownerID, From: from, To: to}

	if profileID != nil && *profileID != "" {
		profile, err := s.profiles.FindProfile(ctx, *profileID, ownerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Scope{}, fmt.Errorf("Resolve: profile %s: %w", *profileID, ErrNotFoundOrForbidden)
			}
			return Scope{}, fmt.Errorf("Resolve: find profile: %w", err)
		}
		scope.ProfileID = profileID
		if scope.From == nil {
			scope.From = profile.PeriodStart
		}
		if scope.To == nil {
			scope.To = profile.PeriodEnd
		}
	}

	if scope.From != nil && scope.To != nil && scope.From.After(*scope.To) {
		return Scope{}, fmt.Errorf("Resolve: dateFrom after dateTo: %w", ErrInvalidRange)
	}

	return scope, nil
}

// fetch loads the scope's transactions, optionally restricted to one kind.
func (s *Service) fetch(ctx context.Context, scope Scope, kind *domain.TransactionKind) ([]domain.Transaction, error) {
	return s.txs.FindTransactions(ctx, store.TransactionFilter{
		OwnerID:   scope.OwnerID,
		ProfileID: scope.ProfileID,
		From:      scope.From,
		To:        scope.To,
		Kind:      kind,
	})
}

func kindPtr(k domain.TransactionKind) *domain.TransactionKind { return &k }
