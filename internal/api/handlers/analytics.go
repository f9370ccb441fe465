package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
)

// Parameter caps mirror the boundary limits on long-running queries.
const (
	defaultTrendMonths = 12
	maxTrendMonths     = 24
	defaultTopCount    = 5
	maxTopCount        = 10
	defaultWeeks       = 4
	maxWeeks           = 52
)

// AnalyticsHandler serves the derived-metrics endpoints.
type AnalyticsHandler struct {
	engine *analytics.Service
	log    zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(engine *analytics.Service, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine, log: log}
}

// resolve authenticates the request and builds its scope.
func (h *AnalyticsHandler) resolve(w http.ResponseWriter, r *http.Request) (analytics.Scope, bool) {
	owner, ok := ownerID(w, r)
	if !ok {
		return analytics.Scope{}, false
	}
	params, err := parseScopeParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return analytics.Scope{}, false
	}
	scope, err := h.engine.Resolve(r.Context(), owner, params.profileID, params.from, params.to)
	if err != nil {
		writeEngineError(w, h.log, err, "resolve")
		return analytics.Scope{}, false
	}
	return scope, true
}

// Categories handles GET /api/analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	breakdown, err := h.engine.CategoryBreakdown(r.Context(), scope)
	if err != nil {
		writeEngineError(w, h.log, err, "categories")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, breakdown)
}

// Trends handles GET /api/analytics/trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	bucket := analytics.TrendBucket(r.URL.Query().Get("period"))
	if bucket == "" {
		bucket = analytics.BucketDay
	}
	if !bucket.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, `period must be "day", "week", or "month"`)
		return
	}
	trends, err := h.engine.Trends(r.Context(), scope, bucket)
	if err != nil {
		writeEngineError(w, h.log, err, "trends")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, trends)
}

// Insights handles GET /api/analytics/insights
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	result, err := h.engine.Insights(r.Context(), scope)
	if err != nil {
		writeEngineError(w, h.log, err, "insights")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"insights": result})
}

// MonthlyTrends handles GET /api/analytics/monthly-trends
func (h *AnalyticsHandler) MonthlyTrends(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	months := intParam(r, "months", defaultTrendMonths, maxTrendMonths)
	trends, err := h.engine.MonthlyTrends(r.Context(), scope, months)
	if err != nil {
		writeEngineError(w, h.log, err, "monthly-trends")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, trends)
}

// CategoryTrends handles GET /api/analytics/category-trends
func (h *AnalyticsHandler) CategoryTrends(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	top := intParam(r, "topCategories", defaultTopCount, maxTopCount)
	months := intParam(r, "months", defaultTrendMonths, maxTrendMonths)
	trends, err := h.engine.CategoryTrends(r.Context(), scope, top, months)
	if err != nil {
		writeEngineError(w, h.log, err, "category-trends")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"categoryTrends": trends})
}

// WeeklyPatterns handles GET /api/analytics/weekly-patterns
func (h *AnalyticsHandler) WeeklyPatterns(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	weeks := intParam(r, "weeks", defaultWeeks, maxWeeks)
	patterns, err := h.engine.WeeklyPatterns(r.Context(), scope, weeks)
	if err != nil {
		writeEngineError(w, h.log, err, "weekly-patterns")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"patterns": patterns})
}

// YearOverYear handles GET /api/analytics/year-over-year
func (h *AnalyticsHandler) YearOverYear(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	year := intParam(r, "year", time.Now().UTC().Year(), 0)
	comparisons, err := h.engine.YearOverYear(r.Context(), scope, year)
	if err != nil {
		writeEngineError(w, h.log, err, "year-over-year")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"comparisons": comparisons})
}

// Forecast handles GET /api/analytics/forecast
func (h *AnalyticsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.resolve(w, r)
	if !ok {
		return
	}
	fc, err := h.engine.Forecast(r.Context(), scope)
	if err != nil {
		writeEngineError(w, h.log, err, "forecast")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"forecast": fc})
}
