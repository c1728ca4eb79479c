package analyses

import (
	"time"

	"greencode-backend/internal/analyses/engine"
)

// Analysis is one stored engine run.
type Analysis struct {
	ID        string
	UserID    string
	Result    engine.Result
	ReportKey string
	CreatedAt time.Time
}
