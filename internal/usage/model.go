package usage

import "time"

// Usage represents a user's plan consumption snapshot for the current month.
type Usage struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining reports how many analyses are left in the window, or Unlimited.
func (u Usage) Remaining() int {
	if u.Limit == Unlimited {
		return Unlimited
	}
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}
