package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidTaskType = errors.New("model: invalid task type")
	ErrInvalidSource   = errors.New("model: invalid decomposition source")
	ErrEmptySteps      = errors.New("model: decomposition has no steps")
)

type TaskType string

const (
	TaskTypeCoding        TaskType = "coding"
	TaskTypeWriting       TaskType = "writing"
	TaskTypeMeeting       TaskType = "meeting"
	TaskTypeStudy         TaskType = "study"
	TaskTypeDesign        TaskType = "design"
	TaskTypeResearch      TaskType = "research"
	TaskTypeAdmin         TaskType = "admin"
	TaskTypeCommunication TaskType = "communication"
	TaskTypeGeneral       TaskType = "general"
)

var TaskTypes = []TaskType{
	TaskTypeCoding, TaskTypeWriting, TaskTypeMeeting, TaskTypeStudy, TaskTypeDesign,
	TaskTypeResearch, TaskTypeAdmin, TaskTypeCommunication, TaskTypeGeneral,
}

func (t TaskType) IsValid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTaskType maps unknown or empty names to general.
func ParseTaskType(s string) TaskType {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return TaskTypeGeneral
	}
	return t
}

type Source string

const (
	SourceLocal    Source = "local"
	SourceOpenAI   Source = "openai"
	SourceDeepSeek Source = "deepseek"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceLocal, SourceOpenAI, SourceDeepSeek:
		return true
	default:
		return false
	}
}

type Step struct {
	Text            string `json:"text"`
	DurationMinutes int    `json:"duration"`
	Order           int    `json:"order"`
}

// Decomposition is an execution plan for a task. Step durations are expected
// to add up to roughly TotalMinutes; that is not enforced.
type Decomposition struct {
	TaskType     TaskType  `json:"taskType"`
	Summary      string    `json:"summary"`
	TotalMinutes int       `json:"totalDuration"`
	Steps        []Step    `json:"steps"`
	Tips         []string  `json:"tips"`
	Source       Source    `json:"source"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

func (d Decomposition) Validate() error {
	if !d.TaskType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTaskType, d.TaskType)
	}
	if !d.Source.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, d.Source)
	}
	if len(d.Steps) == 0 {
		return ErrEmptySteps
	}
	for _, step := range d.Steps {
		if strings.TrimSpace(step.Text) == "" {
			return errors.New("model: decomposition step text is required")
		}
		if step.DurationMinutes < 0 {
			return fmt.Errorf("%w: step %q has %d minutes", ErrInvalidDuration, step.Text, step.DurationMinutes)
		}
	}
	return nil
}

// OrderedSteps returns the steps sorted by Order, keeping input order for ties.
func (d Decomposition) OrderedSteps() []Step {
	out := append([]Step(nil), d.Steps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (d Decomposition) StepMinutes() int {
	total := 0
	for _, step := range d.Steps {
		total += step.DurationMinutes
	}
	return total
}
