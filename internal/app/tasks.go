package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// NewTask is the input to AddTask. Priority defaults to medium.
type NewTask struct {
	Text             string
	Priority         model.Priority
	ScheduledTime    string
	EstimatedMinutes int
}

// TaskEdit changes the non-nil fields of a task.
type TaskEdit struct {
	Text             *string
	Priority         *model.Priority
	ScheduledTime    *string
	EstimatedMinutes *int
}

func cloneTask(t model.Task) model.Task {
	t.Subtasks = append([]model.Subtask(nil), t.Subtasks...)
	return t
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func (w *Workspace) indexLocked(id string) int {
	for i := range w.tasks {
		if w.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) taskLocked(id string) (*model.Task, error) {
	i := w.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	return &w.tasks[i], nil
}

func (w *Workspace) AddTask(in NewTask) (model.Task, error) {
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	task := model.Task{
		ID:               w.newID(),
		Text:             strings.TrimSpace(in.Text),
		Priority:         in.Priority,
		ScheduledTime:    strings.TrimSpace(in.ScheduledTime),
		EstimatedMinutes: in.EstimatedMinutes,
		CreatedAt:        w.now(),
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	w.mu.Lock()
	w.tasks = append(w.tasks, task)
	w.settings.Usage.TotalTasksEverSeen++
	w.mu.Unlock()

	w.markDirty(backup.EntryTasks, backup.EntryAppStats)
	w.logger.Debug("task added", "task", task.ID, "priority", string(task.Priority))
	return task, nil
}

func (w *Workspace) EditTask(id string, edit TaskEdit) (model.Task, error) {
	w.mu.Lock()
	task, err := w.taskLocked(id)
	if err != nil {
		w.mu.Unlock()
		return model.Task{}, err
	}
	next := cloneTask(*task)
	if edit.Text != nil {
		next.Text = strings.TrimSpace(*edit.Text)
	}
	if edit.Priority != nil {
		next.Priority = *edit.Priority
	}
	if edit.ScheduledTime != nil {
		next.ScheduledTime = strings.TrimSpace(*edit.ScheduledTime)
	}
	if edit.EstimatedMinutes != nil {
		next.EstimatedMinutes = *edit.EstimatedMinutes
	}
	if err := next.Validate(); err != nil {
		w.mu.Unlock()
		return model.Task{}, err
	}
	*task = next
	w.mu.Unlock()

	w.markDirty(backup.EntryTasks)
	return cloneTask(next), nil
}

// ToggleTask flips manual completion and returns the new state.
func (w *Workspace) ToggleTask(id string) (bool, error) {
	w.mu.Lock()
	task, err := w.taskLocked(id)
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	done := !task.Completed
	task.SetCompleted(done, w.now())
	w.mu.Unlock()

	w.markDirty(backup.EntryTasks)
	return done, nil
}

// DeleteTask removes a task, cancels its analysis and discards a countdown
// bound to it or to one of its subtasks. Ledger entries are kept.
func (w *Workspace) DeleteTask(id string) error {
	w.mu.Lock()
	i := w.indexLocked(id)
	if i < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	removed := w.tasks[i]
	w.tasks = append(w.tasks[:i], w.tasks[i+1:]...)
	w.mu.Unlock()

	w.analysis.Cancel(id)
	if !w.stopFocusOn(id) {
		w.stopFocusOn(subtaskIDs(removed.Subtasks)...)
	}

	w.markDirty(backup.EntryTasks)
	w.logger.Info("task deleted", "task", id)
	return nil
}

func (w *Workspace) Task(id string) (model.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	task, err := w.taskLocked(id)
	if err != nil {
		return model.Task{}, err
	}
	return cloneTask(*task), nil
}

// Tasks returns the filtered list in display order.
func (w *Workspace) Tasks(filter model.Filter) []model.Task {
	w.mu.Lock()
	out := model.FilterTasks(cloneTasks(w.tasks), filter)
	w.mu.Unlock()
	model.SortTasks(out)
	return out
}

func (w *Workspace) TaskStats() model.TaskStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.ComputeTaskStats(w.tasks)
}

// Analyze decomposes a task and attaches the result. A second call for the
// same task cancels the first, which returns analysis.ErrCanceled.
func (w *Workspace) Analyze(ctx context.Context, id string) (analysis.Outcome, error) {
	w.mu.Lock()
	task, err := w.taskLocked(id)
	if err != nil {
		w.mu.Unlock()
		return analysis.Outcome{}, err
	}
	req := analysis.Request{TaskID: task.ID, Text: task.Text, EstimatedMinutes: task.EstimatedMinutes}
	w.mu.Unlock()

	out, err := w.analysis.Analyze(ctx, req)
	if err != nil {
		return analysis.Outcome{}, err
	}

	w.mu.Lock()
	task, err = w.taskLocked(id)
	if err != nil {
		w.mu.Unlock()
		return analysis.Outcome{}, err
	}
	d := out.Decomposition
	task.Analysis = &d
	w.mu.Unlock()

	w.markDirty(backup.EntryTasks)
	w.publish(Event{Kind: EventAnalysisDone, TaskID: id, Outcome: &out})
	return out, nil
}

func (w *Workspace) AnalysisPending(id string) bool {
	return w.analysis.InFlight(id)
}

func (w *Workspace) ConvertToSubtasks(id string) (model.Task, error) {
	w.mu.Lock()
	task, err := w.taskLocked(id)
	if err != nil {
		w.mu.Unlock()
		return model.Task{}, err
	}
	replaced := subtaskIDs(task.Subtasks)
	if err := task.ConvertToSubtasks(); err != nil {
		w.mu.Unlock()
		return model.Task{}, err
	}
	out := cloneTask(*task)
	w.mu.Unlock()

	if w.stopFocusOn(replaced...) {
		w.logger.Info("countdown stopped, its subtask was replaced", "task", id)
	}
	w.markDirty(backup.EntryTasks)
	return out, nil
}

func subtaskIDs(subs []model.Subtask) []string {
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	return ids
}

// stopFocusOn stops the countdown when it is bound to one of ids.
func (w *Workspace) stopFocusOn(ids ...string) bool {
	for _, id := range ids {
		if w.timer.IsBoundTo(id) {
			return w.timer.Stop()
		}
	}
	return false
}

// ToggleSubtask flips one subtask and returns its new state. The parent
// follows the auto-complete rule.
func (w *Workspace) ToggleSubtask(taskID, subtaskID string) (bool, error) {
	w.mu.Lock()
	task, err := w.taskLocked(taskID)
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	done, err := task.ToggleSubtask(subtaskID, w.now())
	w.mu.Unlock()
	if err != nil {
		return false, err
	}
	w.markDirty(backup.EntryTasks)
	return done, nil
}
