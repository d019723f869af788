package uiutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{name: "future", at: now.Add(time.Hour), want: "just now"},
		{name: "seconds", at: now.Add(-30 * time.Second), want: "just now"},
		{name: "one minute", at: now.Add(-time.Minute), want: "1 minute ago"},
		{name: "minutes", at: now.Add(-25 * time.Minute), want: "25 minutes ago"},
		{name: "hours", at: now.Add(-3 * time.Hour), want: "3 hours ago"},
		{name: "one day", at: now.Add(-26 * time.Hour), want: "1 day ago"},
		{name: "old", at: now.Add(-30 * 24 * time.Hour), want: FormatFriendlyDateTime(now.Add(-30 * 24 * time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeTo(tt.at, now))
		})
	}
}

func TestFormatFriendlyDateTime_Zero(t *testing.T) {
	assert.Empty(t, FormatFriendlyDateTime(time.Time{}))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: -5, want: "0s"},
		{seconds: 40, want: "40s"},
		{seconds: 60, want: "1m"},
		{seconds: 1500, want: "25m"},
		{seconds: 3599, want: "1h 00m"},
		{seconds: 3900, want: "1h 05m"},
		{seconds: 2*3600 + 45*60, want: "2h 45m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "7", FormatMinutes(7))
	assert.Equal(t, "7.5", FormatMinutes(7.5))
	assert.Equal(t, "0.3", FormatMinutes(0.26))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "deep work", TruncateWithEllipsis("deep work", 20))
	assert.Equal(t, "deep…", TruncateWithEllipsis("deep work", 5))
	assert.Equal(t, "…", TruncateWithEllipsis("deep work", 1))
}
