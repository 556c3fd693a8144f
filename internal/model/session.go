package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for ledger grouping.
const DateLayout = "2006-01-02"

// FocusSession is one completed countdown. Sessions are never edited.
type FocusSession struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"taskId"`
	SubtaskID       string    `json:"subtaskId,omitempty"`
	TaskLabel       string    `json:"taskName"`
	SubtaskLabel    string    `json:"subtaskName,omitempty"`
	DurationMinutes int       `json:"duration"`
	CompletedAt     time.Time `json:"completedAt"`
	CalendarDate    string    `json:"date"`
}

func (s FocusSession) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: session id is required")
	}
	if s.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if s.CompletedAt.IsZero() {
		return errors.New("model: session completed_at is required")
	}
	if _, err := time.Parse(DateLayout, s.CalendarDate); err != nil {
		return errors.New("model: session date must be YYYY-MM-DD")
	}
	return nil
}

// CalendarDateOf formats t as a ledger date in loc.
func CalendarDateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
