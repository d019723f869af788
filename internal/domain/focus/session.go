// Package focus holds focus-session records and the pure summary statistics
// shown on the dashboard.
package focus

import (
	"math"

	"github.com/flowstate/flowstate-dashboard/internal/domain/model"
)

const (
	// RecentLimit is how many sessions the recent list shows.
	RecentLimit = 5
	// TrendLimit is how many sessions the duration chart shows.
	TrendLimit = 7
)

// Session is one recorded focus period as returned by the backend.
// Records are never modified after decoding.
type Session struct {
	ID                    int             `json:"id"`
	UserID                int             `json:"user_id"`
	DurationSeconds       int             `json:"duration_seconds"`
	LookAwayCount         int             `json:"look_away_count"`
	TotalLookAwayDuration float64         `json:"total_look_away_duration"`
	TabSwitchCount        int             `json:"tab_switch_count"`
	Timestamp             model.Timestamp `json:"timestamp"`
	Task                  *string         `json:"task,omitempty"`
}

// Label returns the task name, or "Untitled Session" when none was recorded.
func (s Session) Label() string {
	if s.Task == nil || *s.Task == "" {
		return "Untitled Session"
	}
	return *s.Task
}

// Minutes returns the session duration in whole minutes, rounded half away from zero.
func (s Session) Minutes() int {
	return int(math.Round(float64(s.DurationSeconds) / 60))
}
