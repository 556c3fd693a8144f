package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeEdit    Type = "edit"
	TypeDone    Type = "done"
	TypeDelete  Type = "delete"
	TypeAnalyze Type = "analyze"
	TypeSteps   Type = "steps"
	TypeSub     Type = "sub"
	TypeFocus   Type = "focus"
	TypePause   Type = "pause"
	TypeResume  Type = "resume"
	TypeStop    Type = "stop"
	TypeGoal    Type = "goal"
	TypeExport  Type = "export"
	TypeImport  Type = "import"
	TypeDedupe  Type = "dedupe"
	TypeReset   Type = "reset"
	TypeFilter  Type = "filter"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AddArgs carries the inline modifiers of "add": !priority, @HH:MM, ~minutes.
type AddArgs struct {
	Text             string
	Priority         model.Priority
	ScheduledTime    string
	EstimatedMinutes int
}

type EditArgs struct {
	Index int
	Text  string
}

// TaskArgs addresses a task by its 1-based position in the visible list.
type TaskArgs struct {
	Index int
}

type SubArgs struct {
	Index   int
	Subtask int
}

// FocusArgs targets a task, or one of its subtasks when Subtask > 0.
type FocusArgs struct {
	Index   int
	Subtask int
}

type GoalArgs struct {
	Delta int
}

type PathArgs struct {
	Path string
}

type ResetArgs struct {
	Confirmed bool
}

type FilterArgs struct {
	Filter model.Filter
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Task   *TaskArgs
	Sub    *SubArgs
	Focus  *FocusArgs
	Goal   *GoalArgs
	Path   *PathArgs
	Reset  *ResetArgs
	Filter *FilterArgs
}

// Names lists the palette commands in help order.
func Names() []Type {
	return []Type{TypeAdd, TypeEdit, TypeDone, TypeDelete, TypeAnalyze, TypeSteps, TypeSub,
		TypeFocus, TypePause, TypeResume, TypeStop, TypeGoal, TypeFilter,
		TypeExport, TypeImport, TypeDedupe, TypeReset}
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeDone, TypeDelete, TypeAnalyze, TypeSteps:
		return parseTask(input, head, args)
	case TypeSub:
		return parseSub(input, args)
	case TypeFocus:
		return parseFocus(input, args)
	case TypePause, TypeResume, TypeStop, TypeDedupe:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: head, Raw: input}, nil
	case TypeGoal:
		return parseGoal(input, args)
	case TypeExport:
		return Command{Type: TypeExport, Raw: input, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
	case TypeImport:
		if len(args) == 0 {
			return Command{}, invalid("import requires a file path")
		}
		return Command{Type: TypeImport, Raw: input, Path: &PathArgs{Path: strings.Join(args, " ")}}, nil
	case TypeReset:
		confirmed := len(args) == 1 && strings.EqualFold(args[0], "confirm")
		if len(args) > 0 && !confirmed {
			return Command{}, invalid("reset accepts only \"confirm\"")
		}
		return Command{Type: TypeReset, Raw: input, Reset: &ResetArgs{Confirmed: confirmed}}, nil
	case TypeFilter:
		return parseFilter(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, invalid("%s must be a positive number, got %q", name, s)
	}
	return n, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{Priority: model.PriorityMedium}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg) > 1 && strings.HasPrefix(arg, "!"):
			p, err := model.ParsePriority(arg[1:])
			if err != nil {
				return Command{}, invalid("unknown priority %q", arg[1:])
			}
			out.Priority = p
		case len(arg) > 1 && strings.HasPrefix(arg, "@"):
			if err := model.ValidateScheduledTime(arg[1:]); err != nil {
				return Command{}, invalid("time must be HH:MM, got %q", arg[1:])
			}
			out.ScheduledTime = arg[1:]
		case len(arg) > 1 && strings.HasPrefix(arg, "~"):
			n, err := strconv.Atoi(arg[1:])
			if err != nil || n <= 0 {
				return Command{}, invalid("duration must be positive minutes, got %q", arg[1:])
			}
			out.EstimatedMinutes = n
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, invalid("add requires task text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a task number and new text")
	}
	n, err := parseIndex("task number", args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Index: n, Text: strings.Join(args[1:], " ")}}, nil
}

func parseTask(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires a task number", typ)
	}
	n, err := parseIndex("task number", args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Raw: raw, Task: &TaskArgs{Index: n}}, nil
}

func parseSub(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("sub requires a task number and a subtask number")
	}
	n, err := parseIndex("task number", args[0])
	if err != nil {
		return Command{}, err
	}
	m, err := parseIndex("subtask number", args[1])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeSub, Raw: raw, Sub: &SubArgs{Index: n, Subtask: m}}, nil
}

func parseFocus(raw string, args []string) (Command, error) {
	if len(args) < 1 || len(args) > 2 {
		return Command{}, invalid("focus requires a task number and an optional subtask number")
	}
	n, err := parseIndex("task number", args[0])
	if err != nil {
		return Command{}, err
	}
	out := FocusArgs{Index: n}
	if len(args) == 2 {
		if out.Subtask, err = parseIndex("subtask number", args[1]); err != nil {
			return Command{}, err
		}
	}
	return Command{Type: TypeFocus, Raw: raw, Focus: &out}, nil
}

func parseGoal(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("goal requires + or -")
	}
	switch args[0] {
	case "+":
		return Command{Type: TypeGoal, Raw: raw, Goal: &GoalArgs{Delta: 1}}, nil
	case "-":
		return Command{Type: TypeGoal, Raw: raw, Goal: &GoalArgs{Delta: -1}}, nil
	default:
		return Command{}, invalid("goal requires + or -, got %q", args[0])
	}
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("filter requires all, pending or completed")
	}
	switch f := model.Filter(strings.ToLower(args[0])); f {
	case model.FilterAll, model.FilterPending, model.FilterCompleted:
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Filter: f}}, nil
	default:
		return Command{}, invalid("unknown filter %q", args[0])
	}
}
