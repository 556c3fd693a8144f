package model

import (
	"errors"
	"testing"
	"time"
)

var baseTime = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func taskWithSubtasks(n int) Task {
	task := Task{
		ID:        "task-1",
		Text:      "Write the quarterly report",
		Priority:  PriorityHigh,
		CreatedAt: baseTime,
		Analysis: &Decomposition{
			TaskType: TaskTypeWriting,
			Summary:  "report",
			Source:   SourceLocal,
		},
	}
	for i := 1; i <= n; i++ {
		task.Analysis.Steps = append(task.Analysis.Steps, Step{Text: "step", DurationMinutes: 10, Order: i})
	}
	return task
}

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		ID:               "task-1",
		Text:             "Implement model validation",
		Priority:         PriorityHigh,
		ScheduledTime:    "09:30",
		EstimatedMinutes: 50,
		CreatedAt:        baseTime,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletedRequiresCompletedAt(t *testing.T) {
	task := Task{
		ID:        "task-1",
		Text:      "Done task",
		Priority:  PriorityMedium,
		Completed: true,
		CreatedAt: baseTime,
	}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: completed_at is required when task is completed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskValidateInvalidFields(t *testing.T) {
	task := Task{ID: "task-1", Text: "Bad", Priority: Priority("urgent"), CreatedAt: baseTime}
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task.Priority = PriorityLow
	task.ScheduledTime = "25:00"
	if err := task.Validate(); !errors.Is(err, ErrInvalidScheduledTime) {
		t.Fatalf("expected ErrInvalidScheduledTime, got: %v", err)
	}

	task.ScheduledTime = ""
	task.EstimatedMinutes = -5
	if err := task.Validate(); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got: %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" HIGH ")
	if err != nil || p != PriorityHigh {
		t.Fatalf("expected high, got %q (%v)", p, err)
	}
	if _, err := ParsePriority("critical"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestConvertToSubtasksDerivesIDs(t *testing.T) {
	task := taskWithSubtasks(3)
	task.Analysis.Steps[0].Order = 3
	task.Analysis.Steps[2].Order = 1

	if err := task.ConvertToSubtasks(); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(task.Subtasks) != 3 {
		t.Fatalf("expected 3 subtasks, got %d", len(task.Subtasks))
	}
	for i, sub := range task.Subtasks {
		if sub.ID != SubtaskID("task-1", i+1) || sub.Order != i+1 {
			t.Fatalf("unexpected subtask %d: %+v", i, sub)
		}
	}
	if task.Subtasks[0].ID != "task-1-sub-1" {
		t.Fatalf("unexpected id format %q", task.Subtasks[0].ID)
	}

	empty := Task{ID: "t", Text: "x", Priority: PriorityLow, CreatedAt: baseTime}
	if err := empty.ConvertToSubtasks(); !errors.Is(err, ErrNoDecomposition) {
		t.Fatalf("expected ErrNoDecomposition, got %v", err)
	}
}

func TestConvertToSubtasksKeepsOrdinalsIncreasing(t *testing.T) {
	task := taskWithSubtasks(2)
	if err := task.ConvertToSubtasks(); err != nil {
		t.Fatalf("first convert: %v", err)
	}
	if err := task.ConvertToSubtasks(); err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if task.Subtasks[0].ID != "task-1-sub-3" || task.Subtasks[1].ID != "task-1-sub-4" {
		t.Fatalf("unexpected ids after reconvert: %s, %s", task.Subtasks[0].ID, task.Subtasks[1].ID)
	}
	if task.Subtasks[0].Order != 1 || task.SubtaskSeq != 4 {
		t.Fatalf("unexpected order %d or seq %d", task.Subtasks[0].Order, task.SubtaskSeq)
	}

	// Tasks stored without a sequence continue after their highest id.
	legacy := taskWithSubtasks(2)
	legacy.Subtasks = []Subtask{{ID: "task-1-sub-7", Text: "old", Order: 1}}
	if err := legacy.ConvertToSubtasks(); err != nil {
		t.Fatalf("legacy convert: %v", err)
	}
	if legacy.Subtasks[0].ID != "task-1-sub-8" {
		t.Fatalf("unexpected legacy id %s", legacy.Subtasks[0].ID)
	}
}

func TestLastSubtaskAutoCompletesParent(t *testing.T) {
	task := taskWithSubtasks(2)
	if err := task.ConvertToSubtasks(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	if err := task.SetSubtaskCompleted("task-1-sub-1", true, baseTime); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	if task.Completed {
		t.Fatal("parent must stay open while a subtask is open")
	}

	done, err := task.ToggleSubtask("task-1-sub-2", baseTime.Add(time.Minute))
	if err != nil || !done {
		t.Fatalf("toggle second: done=%v err=%v", done, err)
	}
	if !task.Completed || !task.AutoCompleted || task.CompletedAt == nil {
		t.Fatalf("expected auto-completed parent, got %+v", task)
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("auto-completed task invalid: %v", err)
	}
}

func TestReopenPolicy(t *testing.T) {
	t.Run("auto-completed parent reopens", func(t *testing.T) {
		task := taskWithSubtasks(2)
		_ = task.ConvertToSubtasks()
		_ = task.SetSubtaskCompleted("task-1-sub-1", true, baseTime)
		_ = task.SetSubtaskCompleted("task-1-sub-2", true, baseTime)

		if _, err := task.ToggleSubtask("task-1-sub-2", baseTime); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if task.Completed || task.CompletedAt != nil {
			t.Fatalf("expected parent reopened, got %+v", task)
		}
	})

	t.Run("manually completed parent stays completed", func(t *testing.T) {
		task := taskWithSubtasks(2)
		_ = task.ConvertToSubtasks()
		task.SetCompleted(true, baseTime)

		_ = task.SetSubtaskCompleted("task-1-sub-1", true, baseTime)
		_ = task.SetSubtaskCompleted("task-1-sub-1", false, baseTime)
		if !task.Completed || task.AutoCompleted {
			t.Fatalf("expected manual completion kept, got %+v", task)
		}
	})

	t.Run("manual toggle clears auto marker", func(t *testing.T) {
		task := taskWithSubtasks(1)
		_ = task.ConvertToSubtasks()
		_ = task.SetSubtaskCompleted("task-1-sub-1", true, baseTime)
		task.SetCompleted(false, baseTime)
		task.SetCompleted(true, baseTime)
		_ = task.SetSubtaskCompleted("task-1-sub-1", false, baseTime)
		if !task.Completed {
			t.Fatal("manually re-completed parent must not reopen")
		}
	})
}

func TestSubtaskNotFound(t *testing.T) {
	task := taskWithSubtasks(1)
	if _, err := task.ToggleSubtask("missing", baseTime); !errors.Is(err, ErrSubtaskNotFound) {
		t.Fatalf("expected ErrSubtaskNotFound, got %v", err)
	}
}

func TestFocusMinutes(t *testing.T) {
	task := taskWithSubtasks(2)
	_ = task.ConvertToSubtasks()
	task.Subtasks[1].DurationMinutes = 15

	if got := task.FocusMinutes("task-1-sub-2"); got != 15 {
		t.Fatalf("expected subtask duration, got %d", got)
	}
	if got := task.FocusMinutes(""); got != 0 {
		t.Fatalf("expected 0 without estimate, got %d", got)
	}
	task.EstimatedMinutes = 40
	if got := task.FocusMinutes(""); got != 40 {
		t.Fatalf("expected estimate, got %d", got)
	}
}
