package exercise

import "errors"

var (
	// ErrCatalogFetch is returned when the upstream catalog cannot be
	// downloaded or decoded.
	ErrCatalogFetch = errors.New("exercise catalog fetch failed")

	// ErrNoMatch is returned when no exercise scores above the relevance
	// floor for a query.
	ErrNoMatch = errors.New("no exercise matches the query")
)
