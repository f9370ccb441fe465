package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
	"github.com/Project-SpendWise/SpendWise-API/internal/domain"
	"github.com/Project-SpendWise/SpendWise-API/internal/store"
)

// BudgetsHandler serves budget CRUD and budget-vs-actual comparison.
type BudgetsHandler struct {
	engine  *analytics.Service
	budgets store.BudgetStore
	log     zerolog.Logger
}

// NewBudgetsHandler creates a new budgets handler.
func NewBudgetsHandler(engine *analytics.Service, budgets store.BudgetStore, log zerolog.Logger) *BudgetsHandler {
	return &BudgetsHandler{engine: engine, budgets: budgets, log: log}
}

// List handles GET /api/budgets
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter := store.BudgetFilter{OwnerID: owner}
	q := r.URL.Query()
	if v := q.Get("categoryId"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("period"); v != "" {
		period := domain.BudgetPeriod(v)
		if !period.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, `period must be "monthly" or "yearly"`)
			return
		}
		filter.Period = &period
	}

	budgets, err := h.budgets.FindBudgets(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list budgets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list budgets")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// Upsert handles POST /api/budgets. One budget exists per
// (owner, category, period); posting again replaces it.
func (h *BudgetsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req struct {
		CategoryID   string          `json:"categoryId"`
		CategoryName string          `json:"categoryName"`
		Amount       decimal.Decimal `json:"amount"`
		Period       string          `json:"period"`
		StartDate    string          `json:"startDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CategoryID == "" || req.CategoryName == "" || req.Period == "" || req.StartDate == "" {
		middleware.WriteError(w, http.StatusBadRequest, "categoryId, categoryName, amount, period, and startDate are required")
		return
	}
	period := domain.BudgetPeriod(req.Period)
	if !period.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, `period must be "monthly" or "yearly"`)
		return
	}
	if !req.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be greater than 0")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid startDate format. Use ISO 8601 format.")
		return
	}

	budget := &domain.Budget{
		OwnerID:      owner,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		Amount:       req.Amount,
		Period:       period,
		PeriodStart:  *start,
		PeriodEnd:    domain.PeriodEndFor(period, *start),
	}
	if err := h.budgets.UpsertBudget(r.Context(), budget); err != nil {
		h.log.Error().Err(err).Msg("Failed to save budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save budget")
		return
	}

	h.log.Info().Str("budget_id", budget.ID).Str("category", budget.CategoryName).Msg("Budget saved")
	middleware.WriteJSON(w, http.StatusOK, budget)
}

// Delete handles DELETE /api/budgets/{id}
func (h *BudgetsHandler) Delete(w http.ResponseWriter, r *http.Request, budgetID string) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.budgets.DeleteBudget(r.Context(), budgetID, owner); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Budget not found")
			return
		}
		h.log.Error().Err(err).Str("budget_id", budgetID).Msg("Failed to delete budget")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete budget")
		return
	}

	h.log.Info().Str("budget_id", budgetID).Msg("Budget deleted")
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Compare handles GET /api/budgets/comparison
func (h *BudgetsHandler) Compare(w http.ResponseWriter, r *http.Request) {
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
		writeEngineError(w, h.log, err, "compare-resolve")
		return
	}

	period := domain.PeriodMonthly
	if v := r.URL.Query().Get("period"); v != "" {
		period = domain.BudgetPeriod(v)
		if !period.Valid() {
			middleware.WriteError(w, http.StatusBadRequest, `period must be "monthly" or "yearly"`)
			return
		}
	}

	// An explicit window wins over profile-period defaults; with neither,
	// each budget is compared against its own period.
	var window *analytics.DateWindow
	if params.from != nil && params.to != nil {
		window = &analytics.DateWindow{Start: *params.from, End: *params.to}
	}

	comparisons, err := h.engine.CompareBudgets(r.Context(), scope, period, window)
	if err != nil {
		writeEngineError(w, h.log, err, "compare")
		return
	}

	resp := map[string]interface{}{"comparisons": comparisons}
	if window != nil {
		resp["period"] = map[string]time.Time{"start": window.Start, "end": window.End}
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
