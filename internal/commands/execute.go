package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Edit    func(EditArgs) (Result, error)
	Done    func(TaskArgs) (Result, error)
	Delete  func(TaskArgs) (Result, error)
	Analyze func(TaskArgs) (Result, error)
	Steps   func(TaskArgs) (Result, error)
	Sub     func(SubArgs) (Result, error)
	Focus   func(FocusArgs) (Result, error)
	Pause   func() (Result, error)
	Resume  func() (Result, error)
	Stop    func() (Result, error)
	Goal    func(GoalArgs) (Result, error)
	Export  func(PathArgs) (Result, error)
	Import  func(PathArgs) (Result, error)
	Dedupe  func() (Result, error)
	Reset   func(ResetArgs) (Result, error)
	Filter  func(FilterArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, h Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if h.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Add(*cmd.Add)
	case TypeEdit:
		if h.Edit == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Edit(*cmd.Edit)
	case TypeDone, TypeDelete, TypeAnalyze, TypeSteps:
		fn := map[Type]func(TaskArgs) (Result, error){
			TypeDone: h.Done, TypeDelete: h.Delete, TypeAnalyze: h.Analyze, TypeSteps: h.Steps,
		}[cmd.Type]
		if fn == nil {
			return Result{}, missing(cmd.Type)
		}
		return fn(*cmd.Task)
	case TypeSub:
		if h.Sub == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Sub(*cmd.Sub)
	case TypeFocus:
		if h.Focus == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Focus(*cmd.Focus)
	case TypePause, TypeResume, TypeStop, TypeDedupe:
		fn := map[Type]func() (Result, error){
			TypePause: h.Pause, TypeResume: h.Resume, TypeStop: h.Stop, TypeDedupe: h.Dedupe,
		}[cmd.Type]
		if fn == nil {
			return Result{}, missing(cmd.Type)
		}
		return fn()
	case TypeGoal:
		if h.Goal == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Goal(*cmd.Goal)
	case TypeExport:
		if h.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Export(*cmd.Path)
	case TypeImport:
		if h.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Import(*cmd.Path)
	case TypeReset:
		if h.Reset == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Reset(*cmd.Reset)
	case TypeFilter:
		if h.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return h.Filter(*cmd.Filter)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
