package viewmodel

import (
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

// SummaryCard is one headline number on the dashboard.
type SummaryCard struct {
	Label string
	Value string
	Unit  string
}

// SessionRow is one entry of the recent sessions list.
type SessionRow struct {
	ID              int
	Label           string
	DurationSeconds int
	Minutes         int
	LookAwayCount   int
	TabSwitchCount  int
	At              time.Time
}

// Dashboard is the template model for the dashboard page.
type Dashboard struct {
	Greeting            string
	SessionCount        int
	TotalFocusMinutes   float64
	AverageMinutes      int
	TotalLookAways      int
	Recent              []SessionRow
	Bars                []focus.Bar
	SessionsUnavailable bool
}

// HasSessions reports whether any session was loaded.
func (d Dashboard) HasSessions() bool { return d.SessionCount > 0 }

// NewDashboard maps a service dashboard to its template model.
func NewDashboard(d *service.Dashboard) Dashboard {
	vm := Dashboard{
		Greeting:            d.User.Username,
		SessionCount:        d.Summary.SessionCount,
		TotalFocusMinutes:   d.Summary.TotalFocusMinutes,
		AverageMinutes:      d.Summary.AverageDurationMinutes,
		TotalLookAways:      d.Summary.TotalLookAways,
		Bars:                d.Bars,
		SessionsUnavailable: d.SessionsUnavailable,
		Recent:              make([]SessionRow, 0, len(d.Summary.RecentSessions)),
	}
	for _, s := range d.Summary.RecentSessions {
		vm.Recent = append(vm.Recent, SessionRow{
			ID:              s.ID,
			Label:           s.Label(),
			DurationSeconds: s.DurationSeconds,
			Minutes:         s.Minutes(),
			LookAwayCount:   s.LookAwayCount,
			TabSwitchCount:  s.TabSwitchCount,
			At:              s.Timestamp.Time,
		})
	}
	return vm
}
