package analyses

import (
	"errors"
	"fmt"

	"greencode-backend/internal/usage"
)

var ErrNotFound = errors.New("not found")

// LimitError reports a rejected analysis together with the usage that caused it.
// It matches usage.ErrLimitReached with errors.Is.
type LimitError struct {
	Usage usage.Usage
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("analysis limit reached: used %d of %d", e.Usage.Used, e.Usage.Limit)
}

func (e *LimitError) Unwrap() error {
	return usage.ErrLimitReached
}
