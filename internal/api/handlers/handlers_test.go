package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/auth"
	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store/memory"
)

const testOwner = "3f9d7a52-1c44-4e0b-9f3a-8b2d5e6c7a90"

type fixture struct {
	mem          *memory.Store
	analytics    *AnalyticsHandler
	transactions *TransactionsHandler
	budgets      *BudgetsHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewStore()
	engine := analytics.NewService(mem, mem, mem)
	log := zerolog.Nop()
	return &fixture{
		mem:          mem,
		analytics:    NewAnalyticsHandler(engine, log),
		transactions: NewTransactionsHandler(engine, mem, log),
		budgets:      NewBudgetsHandler(engine, mem, log),
	}
}

// request builds an authenticated request the way the auth middleware would.
func request(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(auth.WithOwnerID(r.Context(), testOwner))
}

func seedLedger(t *testing.T, f *fixture) {
	t.Helper()
	cat := "Food"
	txs := []domain.Transaction{
		{
			OwnerID:    testOwner,
			OccurredAt: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
			Amount:     decimal.NewFromInt(500),
			Kind:       domain.KindIncome,
		},
		{
			OwnerID:    testOwner,
			OccurredAt: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
			Amount:     decimal.NewFromInt(100),
			Kind:       domain.KindExpense,
			Category:   &cat,
		},
	}
	if err := f.mem.InsertTransactions(context.Background(), txs); err != nil {
		t.Fatal(err)
	}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)

	w := httptest.NewRecorder()
	f.analytics.Categories(w, request(http.MethodGet, "/api/analytics/categories", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var rows []map[string]interface{}
	decodeJSON(t, w, &rows)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["category"] != "Food" {
		t.Errorf("category = %v, want Food", rows[0]["category"])
	}
}

func TestCategoriesRequiresAuth(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/analytics/categories", nil)
	f.analytics.Categories(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUnknownStatementIs404(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.analytics.Categories(w, request(http.MethodGet, "/api/analytics/categories?statementId=nope", ""))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestTrendsRejectsBadPeriod(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.analytics.Trends(w, request(http.MethodGet, "/api/analytics/trends?period=hourly", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTrendsRejectsBadDate(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.analytics.Trends(w, request(http.MethodGet, "/api/analytics/trends?startDate=yesterday", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestForecastEndpointShape(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)

	w := httptest.NewRecorder()
	f.analytics.Forecast(w, request(http.MethodGet, "/api/analytics/forecast", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Forecast struct {
			Method        string  `json:"method"`
			BasedOnMonths int     `json:"basedOnMonths"`
			Confidence    float64 `json:"confidence"`
		} `json:"forecast"`
	}
	decodeJSON(t, w, &resp)
	if resp.Forecast.Method != "moving_average" {
		t.Errorf("method = %q, want moving_average", resp.Forecast.Method)
	}
	if resp.Forecast.BasedOnMonths != 1 {
		t.Errorf("basedOnMonths = %d, want 1", resp.Forecast.BasedOnMonths)
	}
}

func TestTransactionsCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid expense",
			body:       `{"date":"2026-03-02","description":"Groceries","amount":42.50,"type":"expense","category":"Food"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "valid income without category",
			body:       `{"date":"2026-03-01","description":"Salary","amount":500,"type":"income"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown kind",
			body:       `{"date":"2026-03-01","description":"x","amount":10,"type":"transfer"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-positive amount",
			body:       `{"date":"2026-03-01","description":"x","amount":0,"type":"expense","category":"Food"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "expense without category",
			body:       `{"date":"2026-03-01","description":"x","amount":10,"type":"expense"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "garbage body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := httptest.NewRecorder()
			f.transactions.Create(w, request(http.MethodPost, "/api/transactions", tt.body))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestBudgetLifecycle(t *testing.T) {
	f := newFixture(t)
	seedLedger(t, f)

	// Create.
	w := httptest.NewRecorder()
	body := `{"categoryId":"cat-food","categoryName":"Food","amount":80,"period":"monthly","startDate":"2026-03-01"}`
	f.budgets.Upsert(w, request(http.MethodPost, "/api/budgets", body))
	if w.Code != http.StatusOK {
		t.Fatalf("upsert status = %d: %s", w.Code, w.Body.String())
	}
	var created domain.Budget
	decodeJSON(t, w, &created)
	if created.ID == "" {
		t.Fatal("created budget has no id")
	}

	// Compare: 100 spent against an 80 budget.
	w = httptest.NewRecorder()
	f.budgets.Compare(w, request(http.MethodGet, "/api/budgets/comparison", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("compare status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Comparisons []struct {
			PercentageUsed decimal.Decimal `json:"percentageUsed"`
			IsOverBudget   bool            `json:"isOverBudget"`
			Status         string          `json:"status"`
		} `json:"comparisons"`
	}
	decodeJSON(t, w, &resp)
	if len(resp.Comparisons) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(resp.Comparisons))
	}
	if !resp.Comparisons[0].IsOverBudget || resp.Comparisons[0].Status != "over_budget" {
		t.Errorf("comparison = %+v, want over_budget", resp.Comparisons[0])
	}

	// Delete, then the listing is empty.
	w = httptest.NewRecorder()
	f.budgets.Delete(w, request(http.MethodDelete, "/api/budgets/"+created.ID, ""), created.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	f.budgets.List(w, request(http.MethodGet, "/api/budgets", ""))
	var listing struct {
		Budgets []domain.Budget `json:"budgets"`
	}
	decodeJSON(t, w, &listing)
	if len(listing.Budgets) != 0 {
		t.Errorf("got %d budgets after delete, want 0", len(listing.Budgets))
	}
}

func TestBudgetUpsertValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"categoryName":"Food"}`},
		{"bad period", `{"categoryId":"c","categoryName":"Food","amount":80,"period":"weekly","startDate":"2026-03-01"}`},
		{"zero amount", `{"categoryId":"c","categoryName":"Food","amount":0,"period":"monthly","startDate":"2026-03-01"}`},
		{"bad date", `{"categoryId":"c","categoryName":"Food","amount":80,"period":"monthly","startDate":"March"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := httptest.NewRecorder()
			f.budgets.Upsert(w, request(http.MethodPost, "/api/budgets", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}
