package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// TransactionsHandler serves the transaction listing, creation and summary
// endpoints.
type TransactionsHandler struct {
	engine *analytics.Service
	txs    store.TransactionStore
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(engine *analytics.Service, txs store.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{engine: engine, txs: txs, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	params, err := parseScopeParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	scope, err := h.engine.Resolve(r.Context(), owner, params.profileID, params.from, params.to)
	if err != nil {
		writeEngineError(w, h.log, err, "transactions-resolve")
		return
	}

	filter := store.TransactionFilter{
		OwnerID:   scope.OwnerID,
		ProfileID: scope.ProfileID,
		From:      scope.From,
		To:        scope.To,
	}
	if v := r.URL.Query().Get("type"); v != "" {
		kind := domain.TransactionKind(v)
		if !kind.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, `type must be "income" or "expense"`)
			return
		}
		filter.Kind = &kind
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	transactions, err := h.txs.FindTransactions(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Type        string          `json:"type"`
		Category    *string         `json:"category"`
		Merchant    *string         `json:"merchant"`
		Account     *string         `json:"account"`
		StatementID *string         `json:"statementId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind := domain.TransactionKind(req.Type)
	if !kind.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, `type must be "income" or "expense"`)
		return
	}
	if !req.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}
	if kind == domain.KindExpense && (req.Category == nil || *req.Category == "") {
		middleware.WriteError(w, http.StatusBadRequest, "category is required for expenses")
		return
	}
	if kind == domain.KindIncome {
		req.Category = nil
	}
	occurredAt, err := parseDate(req.Date)
	if err != nil || occurredAt == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format. Use ISO 8601 format.")
		return
	}

	tx := domain.Transaction{
		OwnerID:     owner,
		ProfileID:   req.StatementID,
		OccurredAt:  *occurredAt,
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        kind,
		Category:    req.Category,
		Merchant:    req.Merchant,
		Account:     req.Account,
	}
	if err := h.txs.InsertTransactions(r.Context(), []domain.Transaction{tx}); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Summary handles GET /api/analytics/summary
func (h *TransactionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	params, err := parseScopeParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	scope, err := h.engine.Resolve(r.Context(), owner, params.profileID, params.from, params.to)
	if err != nil {
		writeEngineError(w, h.log, err, "summary-resolve")
		return
	}

	summary, err := h.engine.Summary(r.Context(), scope)
	if err != nil {
		writeEngineError(w, h.log, err, "summary")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}
