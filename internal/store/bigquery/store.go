package bigquery

import (
	"context"
	"fmt"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// Store is a BigQuery-backed implementation of the store contracts.
type Store struct {
	client    *bq.Client
	projectID string
}

// NewStore creates a store with its own BigQuery client.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	client, err := bq.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: bigquery client: %w", err)
	}
	return &Store{client: client, projectID: projectID}, nil
}

// NewStoreWithClient wraps an existing client, mainly for tests.
func NewStoreWithClient(client *bq.Client, projectID string) *Store {
	return &Store{client: client, projectID: projectID}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) table(name string) *bq.Table {
	return s.client.DatasetInProject(s.projectID, datasetID).Table(name)
}

// FindTransactions implements store.TransactionStore.
func (s *Store) FindTransactions(ctx context.Context, f store.TransactionFilter) ([]domain.Transaction, error) {
	sql := fmt.Sprintf(`
		SELECT
			transaction_id, owner_id, profile_id, occurred_at, description,
			amount, kind, category, merchant, account, created_ts
		FROM %s.%s
		WHERE owner_id = @owner_id`, datasetID, transactionsTable)
	params := []bq.QueryParameter{{Name: "owner_id", Value: f.OwnerID}}

	if f.ProfileID != nil {
		sql += " AND profile_id = @profile_id"
		params = append(params, bq.QueryParameter{Name: "profile_id", Value: *f.ProfileID})
	}
	if f.From != nil {
		sql += " AND occurred_at >= @from_ts"
		params = append(params, bq.QueryParameter{Name: "from_ts", Value: f.From.UTC()})
	}
	if f.To != nil {
		sql += " AND occurred_at <= @to_ts"
		params = append(params, bq.QueryParameter{Name: "to_ts", Value: f.To.UTC()})
	}
	if f.Kind != nil {
		sql += " AND kind = @kind"
		params = append(params, bq.QueryParameter{Name: "kind", Value: string(*f.Kind)})
	}
	if f.Category != nil {
		sql += " AND category = @category"
		params = append(params, bq.QueryParameter{Name: "category", Value: *f.Category})
	}
	sql += " ORDER BY occurred_at, transaction_id"

	q := s.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindTransactions: query read: %w", err)
	}

	var out []domain.Transaction
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FindTransactions: iterate: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// InsertTransactions implements store.TransactionStore through the streaming
// inserter.
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*TransactionRow, 0, len(txs))
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		rows = append(rows, transactionToRow(t))
	}
	if err := s.table(transactionsTable).Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// FindProfile implements store.ProfileStore. The owner predicate is part of
// the query, so missing and foreign profiles look the same.
func (s *Store) FindProfile(ctx context.Context, id, ownerID string) (*domain.Profile, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT profile_id, owner_id, name, file_name, storage_uri, period_start, period_end, uploaded_ts
		FROM %s.%s
		WHERE profile_id = @profile_id AND owner_id = @owner_id
		LIMIT 1`, datasetID, profilesTable))
	q.Parameters = []bq.QueryParameter{
		{Name: "profile_id", Value: id},
		{Name: "owner_id", Value: ownerID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindProfile: query read: %w", err)
	}

	var r ProfileRow
	if err := it.Next(&r); err == iterator.Done {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("FindProfile: iterate: %w", err)
	}
	p := r.toDomain()
	return &p, nil
}

// ListProfiles implements store.ProfileStore.
func (s *Store) ListProfiles(ctx context.Context, ownerID string) ([]domain.Profile, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT profile_id, owner_id, name, file_name, storage_uri, period_start, period_end, uploaded_ts
		FROM %s.%s
		WHERE owner_id = @owner_id
		ORDER BY uploaded_ts DESC`, datasetID, profilesTable))
	q.Parameters = []bq.QueryParameter{{Name: "owner_id", Value: ownerID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListProfiles: query read: %w", err)
	}

	var out []domain.Profile
	for {
		var r ProfileRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListProfiles: iterate: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// InsertProfile implements store.ProfileStore.
func (s *Store) InsertProfile(ctx context.Context, p *domain.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	row := &ProfileRow{
		ProfileID:  p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		UploadedTS: p.UploadedAt,
	}
	if p.FileName != "" {
		row.FileName = bq.NullString{StringVal: p.FileName, Valid: true}
	}
	if p.StorageURI != "" {
		row.StorageURI = bq.NullString{StringVal: p.StorageURI, Valid: true}
	}
	if p.PeriodStart != nil {
		row.PeriodStart = bq.NullDate{Date: civil.DateOf(*p.PeriodStart), Valid: true}
	}
	if p.PeriodEnd != nil {
		row.PeriodEnd = bq.NullDate{Date: civil.DateOf(*p.PeriodEnd), Valid: true}
	}
	if err := s.table(profilesTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertProfile: inserting row: %w", err)
	}
	return nil
}

// FindBudgets implements store.BudgetStore.
func (s *Store) FindBudgets(ctx context.Context, f store.BudgetFilter) ([]domain.Budget, error) {
	sql := fmt.Sprintf(`
		SELECT budget_id, owner_id, category_id, category_name, amount, period, period_start, period_end, created_ts, updated_ts
		FROM %s.%s
		WHERE owner_id = @owner_id`, datasetID, budgetsTable)
	params := []bq.QueryParameter{{Name: "owner_id", Value: f.OwnerID}}

	if f.CategoryID != nil {
		sql += " AND category_id = @category_id"
		params = append(params, bq.QueryParameter{Name: "category_id", Value: *f.CategoryID})
	}
	if f.Period != nil {
		sql += " AND period = @period"
		params = append(params, bq.QueryParameter{Name: "period", Value: string(*f.Period)})
	}
	sql += " ORDER BY period_start DESC, budget_id"

	q := s.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindBudgets: query read: %w", err)
	}

	var out []domain.Budget
	for {
		var r BudgetRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FindBudgets: iterate: %w", err)
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// UpsertBudget implements store.BudgetStore with a MERGE on the
// (owner, category, period) uniqueness key.
func (s *Store) UpsertBudget(ctx context.Context, b *domain.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	q := s.client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @owner_id AS owner_id, @category_id AS category_id, @period AS period) src
		ON t.owner_id = src.owner_id AND t.category_id = src.category_id AND t.period = src.period
		WHEN MATCHED THEN UPDATE SET
			category_name = @category_name,
			amount = @amount,
			period_start = @period_start,
			period_end = @period_end,
			updated_ts = @now
		WHEN NOT MATCHED THEN INSERT
			(budget_id, owner_id, category_id, category_name, amount, period, period_start, period_end, created_ts, updated_ts)
		VALUES (@budget_id, @owner_id, @category_id, @category_name, @amount, @period, @period_start, @period_end, @now, @now)`,
		datasetID, budgetsTable))
	q.Parameters = []bq.QueryParameter{
		{Name: "budget_id", Value: b.ID},
		{Name: "owner_id", Value: b.OwnerID},
		{Name: "category_id", Value: b.CategoryID},
		{Name: "category_name", Value: b.CategoryName},
		{Name: "amount", Value: b.Amount.Rat()},
		{Name: "period", Value: string(b.Period)},
		{Name: "period_start", Value: civil.DateOf(b.PeriodStart)},
		{Name: "period_end", Value: civil.DateOf(b.PeriodEnd)},
		{Name: "now", Value: now},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpsertBudget: run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpsertBudget: wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("UpsertBudget: job: %w", err)
	}
	b.UpdatedAt = now
	return nil
}

// DeleteBudget implements store.BudgetStore.
func (s *Store) DeleteBudget(ctx context.Context, id, ownerID string) error {
	q := s.client.Query(fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE budget_id = @budget_id AND owner_id = @owner_id`, datasetID, budgetsTable))
	q.Parameters = []bq.QueryParameter{
		{Name: "budget_id", Value: id},
		{Name: "owner_id", Value: ownerID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("DeleteBudget: run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("DeleteBudget: wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("DeleteBudget: job: %w", err)
	}
	return nil
}

// Interface guards.
var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.ProfileStore     = (*Store)(nil)
	_ store.BudgetStore      = (*Store)(nil)
)
