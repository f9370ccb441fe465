// Package bigquery implements the store contracts on top of a BigQuery
// dataset. Rows are streamed in through the inserter API and read back with
// parameterized queries; NUMERIC amounts travel as big.Rat and are converted
// to decimals at the package boundary.
package bigquery

import (
	"math/big"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
)

const (
	datasetID         = "spendwise"
	transactionsTable = "transactions"
	profilesTable     = "profiles"
	budgetsTable      = "budgets"
)

// TransactionRow is the finance ledger row shape in
// spendwise.transactions.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	OwnerID   string        `bigquery:"owner_id"`   // REQUIRED
	ProfileID bq.NullString `bigquery:"profile_id"` // NULLABLE

	OccurredAt  time.Time `bigquery:"occurred_at"` // REQUIRED TIMESTAMP
	Description string    `bigquery:"description"` // REQUIRED STRING

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC, always positive
	Kind   string   `bigquery:"kind"`   // REQUIRED: income | expense

	Category bq.NullString `bigquery:"category"` // NULLABLE, set for expenses
	Merchant bq.NullString `bigquery:"merchant"` // NULLABLE
	Account  bq.NullString `bigquery:"account"`  // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"`
}

// ProfileRow is the statement profile row shape in spendwise.profiles.
type ProfileRow struct {
	ProfileID  string `bigquery:"profile_id"` // REQUIRED
	OwnerID    string `bigquery:"owner_id"`   // REQUIRED
	Name       string `bigquery:"name"`
	FileName   bq.NullString `bigquery:"file_name"`
	StorageURI bq.NullString `bigquery:"storage_uri"`

	PeriodStart bq.NullDate `bigquery:"period_start"` // NULLABLE
	PeriodEnd   bq.NullDate `bigquery:"period_end"`   // NULLABLE

	UploadedTS time.Time `bigquery:"uploaded_ts"`
}

// BudgetRow is the budget row shape in spendwise.budgets.
type BudgetRow struct {
	BudgetID     string `bigquery:"budget_id"` // REQUIRED
	OwnerID      string `bigquery:"owner_id"`  // REQUIRED
	CategoryID   string `bigquery:"category_id"`
	CategoryName string `bigquery:"category_name"`

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC
	Period string   `bigquery:"period"` // monthly | yearly

	PeriodStart civil.Date `bigquery:"period_start"`
	PeriodEnd   civil.Date `bigquery:"period_end"`

	CreatedTS time.Time `bigquery:"created_ts"`
	UpdatedTS time.Time `bigquery:"updated_ts"`
}

func (r *TransactionRow) toDomain() domain.Transaction {
	t := domain.Transaction{
		ID:          r.TransactionID,
		OwnerID:     r.OwnerID,
		OccurredAt:  r.OccurredAt,
		Description: r.Description,
		Amount:      ratToDecimal(r.Amount),
		Kind:        domain.TransactionKind(r.Kind),
	}
	if r.ProfileID.Valid {
		v := r.ProfileID.StringVal
		t.ProfileID = &v
	}
	if r.Category.Valid {
		v := r.Category.StringVal
		t.Category = &v
	}
	if r.Merchant.Valid {
		v := r.Merchant.StringVal
		t.Merchant = &v
	}
	if r.Account.Valid {
		v := r.Account.StringVal
		t.Account = &v
	}
	return t
}

func transactionToRow(t domain.Transaction) *TransactionRow {
	r := &TransactionRow{
		TransactionID: t.ID,
		OwnerID:       t.OwnerID,
		OccurredAt:    t.OccurredAt,
		Description:   t.Description,
		Amount:        t.Amount.Rat(),
		Kind:          string(t.Kind),
		CreatedTS:     time.Now().UTC(),
	}
	r.ProfileID = nullString(t.ProfileID)
	r.Category = nullString(t.Category)
	r.Merchant = nullString(t.Merchant)
	r.Account = nullString(t.Account)
	return r
}

func (r *ProfileRow) toDomain() domain.Profile {
	p := domain.Profile{
		ID:         r.ProfileID,
		OwnerID:    r.OwnerID,
		Name:       r.Name,
		UploadedAt: r.UploadedTS,
	}
	if r.FileName.Valid {
		p.FileName = r.FileName.StringVal
	}
	if r.StorageURI.Valid {
		p.StorageURI = r.StorageURI.StringVal
	}
	if r.PeriodStart.Valid {
		v := r.PeriodStart.Date.In(time.UTC)
		p.PeriodStart = &v
	}
	if r.PeriodEnd.Valid {
		v := r.PeriodEnd.Date.In(time.UTC)
		p.PeriodEnd = &v
	}
	return p
}

func (r *BudgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:           r.BudgetID,
		OwnerID:      r.OwnerID,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Amount:       ratToDecimal(r.Amount),
		Period:       domain.BudgetPeriod(r.Period),
		PeriodStart:  r.PeriodStart.In(time.UTC),
		PeriodEnd:    r.PeriodEnd.In(time.UTC),
		CreatedAt:    r.CreatedTS,
		UpdatedAt:    r.UpdatedTS,
	}
}

// ratToDecimal converts a BigQuery NUMERIC value to a two-place decimal.
func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, 2)
}

func nullString(v *string) bq.NullString {
	if v == nil {
		return bq.NullString{}
	}
	return bq.NullString{StringVal: *v, Valid: true}
}
