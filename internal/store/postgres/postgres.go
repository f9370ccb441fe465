// Package postgres implements the store contracts on top of a pgx connection
// pool. Amounts are NUMERIC columns scanned into decimals; timestamps are
// stored as timestamptz and compared inclusively.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// Store is a Postgres-backed implementation of the store contracts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool from a DSN and pings it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("Connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Connect: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// FindTransactions implements store.TransactionStore.
func (s *Store) FindTransactions(ctx context.Context, f store.TransactionFilter) ([]domain.Transaction, error) {
	query := `
		SELECT id, owner_id, profile_id, occurred_at, description, amount, kind, category, merchant, account
		FROM transactions
		WHERE owner_id = $1`
	args := []any{f.OwnerID}

	appendArg := func(clause string, v any) {
		args = append(args, v)
		query += " AND " + clause + "$" + strconv.Itoa(len(args))
	}
	if f.ProfileID != nil {
		appendArg("profile_id = ", *f.ProfileID)
	}
	if f.From != nil {
		appendArg("occurred_at >= ", *f.From)
	}
	if f.To != nil {
		appendArg("occurred_at <= ", *f.To)
	}
	if f.Kind != nil {
		appendArg("kind = ", string(*f.Kind))
	}
	if f.Category != nil {
		appendArg("category = ", *f.Category)
	}
	query += " ORDER BY occurred_at, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FindTransactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		var kind string
		if err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.ProfileID,
			&t.OccurredAt,
			&t.Description,
			&t.Amount,
			&kind,
			&t.Category,
			&t.Merchant,
			&t.Account,
		); err != nil {
			return nil, fmt.Errorf("FindTransactions: scan: %w", err)
		}
		t.Kind = domain.TransactionKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTransactions implements store.TransactionStore using one batch.
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range txs {
		id := t.ID
		if id == "" {
			id = uuid.New().String()
		}
		batch.Queue(`
			INSERT INTO transactions (id, owner_id, profile_id, occurred_at, description, amount, kind, category, merchant, account)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, t.OwnerID, t.ProfileID, t.OccurredAt, t.Description, t.Amount, string(t.Kind), t.Category, t.Merchant, t.Account,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range txs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("InsertTransactions: %w", err)
		}
	}
	return nil
}

// FindProfile implements store.ProfileStore. The owner filter is part of the
// query, so a foreign profile scans as pgx.ErrNoRows and is indistinguishable
// from a missing one.
func (s *Store) FindProfile(ctx context.Context, id, ownerID string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, file_name, storage_uri, period_start, period_end, uploaded_at
		FROM profiles
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.FileName, &p.StorageURI, &p.PeriodStart, &p.PeriodEnd, &p.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindProfile: %w", err)
	}
	return &p, nil
}

// ListProfiles implements store.ProfileStore.
func (s *Store) ListProfiles(ctx context.Context, ownerID string) ([]domain.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, file_name, storage_uri, period_start, period_end, uploaded_at
		FROM profiles
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListProfiles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Profile, 0)
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.FileName, &p.StorageURI, &p.PeriodStart, &p.PeriodEnd, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("ListProfiles: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertProfile implements store.ProfileStore.
func (s *Store) InsertProfile(ctx context.Context, p *domain.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (id, owner_id, name, file_name, storage_uri, period_start, period_end, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OwnerID, p.Name, p.FileName, p.StorageURI, p.PeriodStart, p.PeriodEnd, p.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertProfile: %w", err)
	}
	return nil
}

// FindBudgets implements store.BudgetStore.
func (s *Store) FindBudgets(ctx context.Context, f store.BudgetFilter) ([]domain.Budget, error) {
	query := `
		SELECT id, owner_id, category_id, category_name, amount, period, period_start, period_end, created_at, updated_at
		FROM budgets
		WHERE owner_id = $1`
	args := []any{f.OwnerID}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += " AND category_id = $" + strconv.Itoa(len(args))
	}
	if f.Period != nil {
		args = append(args, string(*f.Period))
		query += " AND period = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY period_start DESC, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FindBudgets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Budget, 0)
	for rows.Next() {
		var b domain.Budget
		var period string
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.CategoryName, &b.Amount, &period, &b.PeriodStart, &b.PeriodEnd, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("FindBudgets: scan: %w", err)
		}
		b.Period = domain.BudgetPeriod(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBudget implements store.BudgetStore via ON CONFLICT on the
// (owner, category, period) uniqueness key.
func (s *Store) UpsertBudget(ctx context.Context, b *domain.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO budgets (id, owner_id, category_id, category_name, amount, period, period_start, period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (owner_id, category_id, period) DO UPDATE SET
			category_name = EXCLUDED.category_name,
			amount = EXCLUDED.amount,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		b.ID, b.OwnerID, b.CategoryID, b.CategoryName, b.Amount, string(b.Period), b.PeriodStart, b.PeriodEnd, now,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("UpsertBudget: %w", err)
	}
	b.UpdatedAt = now
	return nil
}

// DeleteBudget implements store.BudgetStore.
func (s *Store) DeleteBudget(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("DeleteBudget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Interface guards.
var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.ProfileStore     = (*Store)(nil)
	_ store.BudgetStore      = (*Store)(nil)
)
