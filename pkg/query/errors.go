package query

import "errors"

// Configuration errors detected before any call is issued.
var (
	// ErrNoIDs is returned when a Spec carries no profile ids.
	ErrNoIDs = errors.New("at least one profile id is required")

	// ErrNoMetrics is returned when a Spec carries no metrics.
	ErrNoMetrics = errors.New("at least one metric is required")

	// ErrNoDateRange is returned when a Spec is missing its start or end date.
	ErrNoDateRange = errors.New("start and end dates are required")

	// ErrNegativeMaxResults is returned when a Spec carries a negative row cap.
	ErrNegativeMaxResults = errors.New("max results must not be negative")
)
