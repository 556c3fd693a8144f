package model

import (
	"fmt"
	"sort"
	"strings"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("model: invalid filter %q", s)
	}
}

func (f Filter) Match(t Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// FilterTasks returns the matching tasks ordered by SortTasks.
func FilterTasks(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return out
}

// SortTasks orders by priority, highest first, then by scheduled time with
// unscheduled tasks last. Equal tasks keep their input order.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.ScheduledTime == b.ScheduledTime:
			return false
		case a.ScheduledTime == "":
			return false
		case b.ScheduledTime == "":
			return true
		default:
			return a.ScheduledTime < b.ScheduledTime
		}
	})
}

type TaskStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Pending     int `json:"pending"`
	HighPending int `json:"highPending"`
	Analyzed    int `json:"analyzed"`
}

func ComputeTaskStats(tasks []Task) TaskStats {
	var s TaskStats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
			if t.Priority == PriorityHigh {
				s.HighPending++
			}
		}
		if t.Analysis != nil {
			s.Analyzed++
		}
	}
	return s
}
