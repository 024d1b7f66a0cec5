package scheduling

import "errors"

var (
	// ErrEmptyInput means no employee produced any schedulable slots, so
	// there is no grid to solve over.
	ErrEmptyInput = errors.New("no employee slots to schedule")

	// ErrInfeasible means the search exhausted every candidate pairing at
	// some slot without finding a continuation to a full schedule.
	ErrInfeasible = errors.New("no valid schedule satisfies the rules and overrides")
)
