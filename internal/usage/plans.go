package usage

import (
	"strings"
	"time"
)

// Unlimited marks a plan allowance with no cap.
const Unlimited = -1

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// PlanSpec describes the allowances of a subscription plan.
type PlanSpec struct {
	Name         string `json:"name"`
	MonthlyLimit int    `json:"monthlyLimit"`
	HistoryLimit int    `json:"historyLimit"`
}

var plans = map[string]PlanSpec{
	PlanFree:       {Name: PlanFree, MonthlyLimit: 10, HistoryLimit: 5},
	PlanPro:        {Name: PlanPro, MonthlyLimit: Unlimited, HistoryLimit: Unlimited},
	PlanEnterprise: {Name: PlanEnterprise, MonthlyLimit: Unlimited, HistoryLimit: Unlimited},
}

// LookupPlan returns the plan with the given name.
func LookupPlan(name string) (PlanSpec, bool) {
	p, ok := plans[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PlanFor returns the named plan, falling back to free for unknown names.
func PlanFor(name string) PlanSpec {
	if p, ok := LookupPlan(name); ok {
		return p
	}
	return plans[PlanFree]
}

// UpgradeFor returns the plan a user should move to once their current one is exhausted.
func UpgradeFor(current string) string {
	if PlanFor(current).Name == PlanFree {
		return PlanPro
	}
	return PlanEnterprise
}

// periodEnd returns 00:00 UTC on the first day of the month after now.
func periodEnd(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func defaultUsage(now time.Time) Usage {
	p := plans[PlanFree]
	return Usage{
		Plan:     p.Name,
		Limit:    p.MonthlyLimit,
		Used:     0,
		ResetsAt: periodEnd(now),
	}
}

func expired(u Usage, now time.Time) bool {
	return !now.Before(u.ResetsAt)
}

func allows(u Usage, n int) bool {
	if u.Limit == Unlimited {
		return true
	}
	return u.Used+n <= u.Limit
}
