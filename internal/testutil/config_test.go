package testutil

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("FLOWSTATE_TESTUTIL_SET", "value")

	if got := getEnvOrDefault("FLOWSTATE_TESTUTIL_SET", "default"); got != "value" {
		t.Errorf("getEnvOrDefault() = %q, want value", got)
	}
	if got := getEnvOrDefault("FLOWSTATE_TESTUTIL_UNSET", "default"); got != "default" {
		t.Errorf("getEnvOrDefault() = %q, want default", got)
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "y"} {
		t.Setenv("FLOWSTATE_TESTUTIL_BOOL", v)
		if !envBool("FLOWSTATE_TESTUTIL_BOOL") {
			t.Errorf("envBool(%q) = false, want true", v)
		}
	}
	t.Setenv("FLOWSTATE_TESTUTIL_BOOL", "off")
	if envBool("FLOWSTATE_TESTUTIL_BOOL") {
		t.Error("envBool(off) = true, want false")
	}
}

func TestSessions(t *testing.T) {
	got := Sessions(3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[2].ID != 3 || got[2].DurationSeconds != 180 || got[2].LookAwayCount != 2 {
		t.Errorf("unexpected third session: %+v", got[2])
	}
	if !got[1].Timestamp.Equal(TestTime().Add(time.Hour)) {
		t.Errorf("timestamp = %v", got[1].Timestamp)
	}
}

func TestSessionBuilder_WithTask(t *testing.T) {
	s := NewSession().WithTask("Deep work").Build()
	if s.Label() != "Deep work" {
		t.Errorf("Label() = %q", s.Label())
	}
}
