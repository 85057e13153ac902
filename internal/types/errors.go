package types

import "errors"

var (
	// ErrNotFound signals a missing row (guest, table) at the storage layer.
	ErrNotFound = errors.New("requested item not found")

	// ErrEmptyActivities signals an activity table with zero rows. The
	// embedder cannot build a vector space over nothing, so this is fatal
	// to the recommendation call and surfaced to the caller.
	ErrEmptyActivities = errors.New("activity table is empty")
)
