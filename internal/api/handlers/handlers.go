// Package handlers implements the HTTP endpoints of the API. Handlers stay
// thin: they authenticate, parse query parameters, delegate to the analytics
// engine or a store, and serialize the result.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Project-SpendWise/SpendWise-API/internal/analytics"
	"github.com/Project-SpendWise/SpendWise-API/internal/api/middleware"
	"github.com/Project-SpendWise/SpendWise-API/internal/auth"
)

// scopeParams are the common query parameters every analytics endpoint
// accepts.
type scopeParams struct {
	profileID *string
	from      *time.Time
	to        *time.Time
}

// parseScopeParams reads statementId/startDate/endDate. Dates accept RFC 3339
// timestamps or plain YYYY-MM-DD.
func parseScopeParams(r *http.Request) (scopeParams, error) {
	q := r.URL.Query()
	var p scopeParams

	if v := q.Get("statementId"); v != "" {
		p.profileID = &v
	}
	var err error
	if p.from, err = parseDate(q.Get("startDate")); err != nil {
		return p, err
	}
	if p.to, err = parseDate(q.Get("endDate")); err != nil {
		return p, err
	}
	return p, nil
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errors.New("invalid date format, use ISO 8601")
	}
	t = t.UTC()
	return &t, nil
}

// intParam reads an integer query parameter with a default and an upper cap
// (cap 0 means uncapped).
func intParam(r *http.Request, name string, def, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// ownerID pulls the authenticated owner from the request context.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := auth.OwnerIDFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return id, true
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, log zerolog.Logger, err error, op string) {
	switch {
	case errors.Is(err, analytics.ErrNotFoundOrForbidden):
		middleware.WriteError(w, http.StatusNotFound, "Statement not found")
	case errors.Is(err, analytics.ErrInvalidRange):
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date range or window parameter")
	case errors.Is(err, analytics.ErrInvalidBudget):
		middleware.WriteError(w, http.StatusBadRequest, "Budget amount must be greater than zero")
	default:
		log.Error().Err(err).Str("op", op).Msg("Analytics request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "An error occurred")
	}
}
