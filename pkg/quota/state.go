// Package quota implements daily request quota tracking and request gating
// for the Analytics API. The Core Reporting API enforces a per-project daily
// request budget; the tracker counts issued requests in Redis so every
// process sharing the project shares the same view of the budget.
package quota

import (
	"time"
)

// redisKeyPrefix prefixes the per-day request counter keys.
// Full key form: ga:quota:requests:2012-01-01
const redisKeyPrefix = "ga:quota:requests:"

// DefaultDailyLimit is the Core Reporting API default daily request budget
// per project.
const DefaultDailyLimit = 50000

// warningFraction of the budget consumed triggers warning logs.
const warningFraction = 0.9

// State represents the quota consumption for the current day.
type State struct {
	// Used is the number of requests recorded today.
	Used int `json:"used"`

	// Limit is the daily request budget.
	Limit int `json:"limit"`

	// ResetAt is the start of the next day (UTC), when the counter rolls over.
	ResetAt time.Time `json:"reset_at"`
}

// Remaining returns the number of requests left in today's budget.
// Never negative.
func (s *State) Remaining() int {
	remaining := s.Limit - s.Used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Exhausted returns true when the daily budget is spent.
func (s *State) Exhausted() bool {
	return s.Used >= s.Limit
}

// NearLimit returns true when consumption has passed the warning threshold
// but the budget is not yet spent.
func (s *State) NearLimit() bool {
	return !s.Exhausted() && float64(s.Used) >= float64(s.Limit)*warningFraction
}

// TimeUntilReset returns the duration until the counter rolls over.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
