package focus

import "math"

// Summary holds the dashboard statistics computed over a list of sessions.
type Summary struct {
	TotalFocusSeconds      int       `json:"total_focus_seconds"`
	TotalFocusMinutes      float64   `json:"total_focus_minutes"`
	SessionCount           int       `json:"session_count"`
	AverageDurationMinutes int       `json:"average_duration_minutes"`
	TotalLookAways         int       `json:"total_look_aways"`
	RecentSessions         []Session `json:"recent_sessions"`
	TrendWindow            []Session `json:"trend_window"`
}

// Summarize computes dashboard statistics. Input order is preserved: recent
// sessions are the first records and the trend window the last ones.
func Summarize(sessions []Session) Summary {
	s := Summary{
		SessionCount:   len(sessions),
		RecentSessions: Recent(sessions),
		TrendWindow:    Trend(sessions),
	}
	for _, sess := range sessions {
		s.TotalFocusSeconds += sess.DurationSeconds
		s.TotalLookAways += sess.LookAwayCount
	}
	s.TotalFocusMinutes = math.Round(float64(s.TotalFocusSeconds)/60*10) / 10
	s.AverageDurationMinutes = AverageMinutes(s.TotalFocusSeconds, s.SessionCount)
	return s
}

// AverageMinutes returns total/count/60 rounded half away from zero, or 0 when count is 0.
func AverageMinutes(totalSeconds, count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(totalSeconds) / float64(count) / 60))
}

// Recent returns up to the first RecentLimit sessions.
func Recent(sessions []Session) []Session {
	return head(sessions, RecentLimit)
}

// Trend returns up to the last TrendLimit sessions.
func Trend(sessions []Session) []Session {
	if len(sessions) <= TrendLimit {
		return clone(sessions)
	}
	return clone(sessions[len(sessions)-TrendLimit:])
}

func head(sessions []Session, n int) []Session {
	if len(sessions) <= n {
		return clone(sessions)
	}
	return clone(sessions[:n])
}

// clone returns a non-nil copy so callers cannot alias the input.
func clone(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return out
}
