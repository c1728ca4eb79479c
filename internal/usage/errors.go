package usage

import "errors"

var (
	// ErrLimitReached indicates the user exceeded their monthly analysis allowance.
	ErrLimitReached = errors.New("limit reached")
	ErrUnknownPlan  = errors.New("unknown plan")
)
