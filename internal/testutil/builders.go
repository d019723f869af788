// Package testutil provides testing utilities and helpers for the FlowState client.
package testutil

import (
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
	"github.com/flowstate/flowstate-dashboard/internal/domain/model"
)

// SessionBuilder provides a fluent interface for building focus.Session values for testing.
type SessionBuilder struct {
	s focus.Session
}

// NewSession creates a SessionBuilder with sensible defaults.
func NewSession() *SessionBuilder {
	return &SessionBuilder{
		s: focus.Session{
			ID:              1,
			UserID:          1,
			DurationSeconds: 1500,
			Timestamp:       model.Timestamp{Time: TestTime()},
		},
	}
}

// WithID sets the session ID.
func (b *SessionBuilder) WithID(id int) *SessionBuilder {
	b.s.ID = id
	return b
}

// WithDuration sets the session duration.
func (b *SessionBuilder) WithDuration(d time.Duration) *SessionBuilder {
	b.s.DurationSeconds = int(d / time.Second)
	return b
}

// WithLookAways sets the look-away count.
func (b *SessionBuilder) WithLookAways(n int) *SessionBuilder {
	b.s.LookAwayCount = n
	return b
}

// WithTask sets the task label.
func (b *SessionBuilder) WithTask(task string) *SessionBuilder {
	b.s.Task = &task
	return b
}

// WithTimestamp sets when the session was recorded.
func (b *SessionBuilder) WithTimestamp(ts time.Time) *SessionBuilder {
	b.s.Timestamp = model.Timestamp{Time: ts}
	return b
}

// Build returns the built session.
func (b *SessionBuilder) Build() focus.Session {
	return b.s
}

// Sessions builds n sessions with sequential IDs, each a minute longer than the previous.
func Sessions(n int) []focus.Session {
	out := make([]focus.Session, 0, n)
	for i := range n {
		out = append(out, NewSession().
			WithID(i+1).
			WithDuration(time.Duration(i+1)*time.Minute).
			WithLookAways(i).
			WithTimestamp(TestTime().Add(time.Duration(i)*time.Hour)).
			Build())
	}
	return out
}
