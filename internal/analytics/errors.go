package analytics

import "errors"

// Error taxonomy surfaced by the engine. The hosting layer maps these to
// transport responses; everything else (empty scopes, zero income, missing
// categories) is a well-formed zero result, not an error.
var (
	// ErrNotFoundOrForbidden deliberately does not distinguish "does not
	// exist" from "belongs to another owner".
	ErrNotFoundOrForbidden = errors.New("not found or access denied")

	// ErrInvalidRange covers dateFrom > dateTo and non-positive
	// months/weeks/topCategories parameters.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidBudget covers zero or negative budget amounts, rejected
	// before any comparison math runs.
	ErrInvalidBudget = errors.New("invalid budget")
)
