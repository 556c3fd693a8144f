package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPriority      = errors.New("model: invalid task priority")
	ErrInvalidDuration      = errors.New("model: invalid duration")
	ErrInvalidScheduledTime = errors.New("model: invalid scheduled time")
	ErrSubtaskNotFound      = errors.New("model: subtask not found")
	ErrNoDecomposition      = errors.New("model: task has no decomposition")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

var scheduledTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type Task struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	Priority         Priority       `json:"priority"`
	ScheduledTime    string         `json:"scheduledTime,omitempty"`
	EstimatedMinutes int            `json:"estimatedDuration,omitempty"`
	Completed        bool           `json:"completed"`
	AutoCompleted    bool           `json:"autoCompleted,omitempty"`
	Analysis         *Decomposition `json:"analysis,omitempty"`
	Subtasks         []Subtask      `json:"subtasks,omitempty"`
	// SubtaskSeq is the last subtask ordinal handed out. Ordinals are never
	// reused, so a subtask id stays unique across conversions.
	SubtaskSeq       int            `json:"subtaskSeq,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
}

type Subtask struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	DurationMinutes int        `json:"duration"`
	Order           int        `json:"order"`
	Completed       bool       `json:"completed"`
	StartedAt       *time.Time `json:"startTime,omitempty"`
	EndedAt         *time.Time `json:"endTime,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return errors.New("model: task text is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.ScheduledTime != "" && !scheduledTimePattern.MatchString(t.ScheduledTime) {
		return fmt.Errorf("%w: %q", ErrInvalidScheduledTime, t.ScheduledTime)
	}
	if t.EstimatedMinutes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, t.EstimatedMinutes)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Completed && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is completed")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	if t.Analysis != nil {
		if err := t.Analysis.Validate(); err != nil {
			return err
		}
	}
	for _, sub := range t.Subtasks {
		if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.Text) == "" {
			return errors.New("model: subtask id and text are required")
		}
		if sub.DurationMinutes < 0 {
			return fmt.Errorf("%w: subtask %s has %d minutes", ErrInvalidDuration, sub.ID, sub.DurationMinutes)
		}
	}
	return nil
}

// ValidateScheduledTime accepts "" or a 24h "HH:MM" clock time.
func ValidateScheduledTime(s string) error {
	if s != "" && !scheduledTimePattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidScheduledTime, s)
	}
	return nil
}

// SetCompleted is the manual completion toggle. A manual change clears the
// auto-completed marker.
func (t *Task) SetCompleted(done bool, now time.Time) {
	t.AutoCompleted = false
	if done == t.Completed {
		return
	}
	t.Completed = done
	if done {
		at := now
		t.CompletedAt = &at
		return
	}
	t.CompletedAt = nil
}

func (t *Task) Subtask(id string) (*Subtask, bool) {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i], true
		}
	}
	return nil, false
}

// SubtaskID is the id of the subtask with the given ordinal.
func SubtaskID(taskID string, ordinal int) string {
	return fmt.Sprintf("%s-sub-%d", taskID, ordinal)
}

// SetSubtaskCompleted marks one subtask and applies the parent rules:
// completing the last open subtask auto-completes the parent, and reopening
// a subtask reopens the parent only when the parent was auto-completed.
func (t *Task) SetSubtaskCompleted(id string, done bool, now time.Time) error {
	sub, ok := t.Subtask(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSubtaskNotFound, id)
	}
	sub.Completed = done
	if done {
		at := now
		sub.EndedAt = &at
	} else {
		sub.EndedAt = nil
	}
	t.syncWithSubtasks(now)
	return nil
}

// ToggleSubtask flips a subtask and returns its new state.
func (t *Task) ToggleSubtask(id string, now time.Time) (bool, error) {
	sub, ok := t.Subtask(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrSubtaskNotFound, id)
	}
	done := !sub.Completed
	return done, t.SetSubtaskCompleted(id, done, now)
}

// MarkSubtaskStarted records when focus on a subtask began.
func (t *Task) MarkSubtaskStarted(id string, now time.Time) error {
	sub, ok := t.Subtask(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrSubtaskNotFound, id)
	}
	at := now
	sub.StartedAt = &at
	return nil
}

func (t *Task) syncWithSubtasks(now time.Time) {
	if len(t.Subtasks) == 0 {
		return
	}
	done, total := t.SubtaskProgress()
	switch {
	case done == total && !t.Completed:
		t.Completed = true
		t.AutoCompleted = true
		at := now
		t.CompletedAt = &at
	case done < total && t.Completed && t.AutoCompleted:
		t.Completed = false
		t.AutoCompleted = false
		t.CompletedAt = nil
	}
}

func (t Task) SubtaskProgress() (done, total int) {
	for _, sub := range t.Subtasks {
		if sub.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// ConvertToSubtasks replaces the subtasks with one per decomposition step.
func (t *Task) ConvertToSubtasks() error {
	if t.Analysis == nil || len(t.Analysis.Steps) == 0 {
		return ErrNoDecomposition
	}
	steps := t.Analysis.OrderedSteps()
	base := t.lastSubtaskOrdinal()
	subs := make([]Subtask, 0, len(steps))
	for i, step := range steps {
		subs = append(subs, Subtask{
			ID:              SubtaskID(t.ID, base+i+1),
			Text:            step.Text,
			DurationMinutes: step.DurationMinutes,
			Order:           i + 1,
		})
	}
	t.Subtasks = subs
	t.SubtaskSeq = base + len(subs)
	if t.AutoCompleted {
		t.Completed = false
		t.AutoCompleted = false
		t.CompletedAt = nil
	}
	return nil
}

// lastSubtaskOrdinal also scans the current ids, which covers tasks stored
// before SubtaskSeq existed.
func (t Task) lastSubtaskOrdinal() int {
	last := t.SubtaskSeq
	prefix := t.ID + "-sub-"
	for _, sub := range t.Subtasks {
		rest, ok := strings.CutPrefix(sub.ID, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > last {
			last = n
		}
	}
	return last
}

// FocusMinutes picks the countdown length for a task or one of its subtasks.
// Zero means the caller should use its configured default.
func (t Task) FocusMinutes(subtaskID string) int {
	if subtaskID != "" {
		for _, sub := range t.Subtasks {
			if sub.ID == subtaskID && sub.DurationMinutes > 0 {
				return sub.DurationMinutes
			}
		}
	}
	if t.EstimatedMinutes > 0 {
		return t.EstimatedMinutes
	}
	return 0
}
