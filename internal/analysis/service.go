package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/idset"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// Outcome is a finished analysis. When FellBack is set, the primary
// provider failed with ProviderErr and the local provider answered.
type Outcome struct {
	Decomposition model.Decomposition
	FellBack      bool
	ProviderErr   error
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Service runs at most one analysis per task. A new request for a task
// cancels the previous one.
type Service struct {
	primary  Provider
	fallback Provider
	timeout  time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	seq      uint64
	requests map[string]inflight
	pending  *idset.Set[string]
}

type ServiceOptions struct {
	Primary Provider
	Timeout time.Duration
	Logger  *logging.Logger
}

func NewService(opts ServiceOptions) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	primary := opts.Primary
	if primary == nil {
		primary = NewLocalProvider()
	}
	return &Service{
		primary:  primary,
		fallback: NewLocalProvider(),
		timeout:  timeout,
		logger:   opts.Logger.WithComponent("analysis"),
		requests: make(map[string]inflight),
		pending:  idset.New[string](),
	}
}

func (s *Service) ProviderName() model.Source { return s.primary.Name() }

func (s *Service) Analyze(ctx context.Context, req Request) (Outcome, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	if prev, ok := s.requests[req.TaskID]; ok {
		prev.cancel()
	}
	s.seq++
	mine := s.seq
	s.requests[req.TaskID] = inflight{seq: mine, cancel: cancel}
	s.pending.Add(req.TaskID)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if cur, ok := s.requests[req.TaskID]; ok && cur.seq == mine {
			delete(s.requests, req.TaskID)
			s.pending.Remove(req.TaskID)
		}
		s.mu.Unlock()
	}()

	d, err := s.primary.Analyze(reqCtx, req)
	if err == nil {
		return Outcome{Decomposition: d}, nil
	}
	if errors.Is(reqCtx.Err(), context.Canceled) {
		return Outcome{}, ErrCanceled
	}

	s.logger.Warn("provider failed, using local analysis", "task", req.TaskID, "provider", string(s.primary.Name()), "error", err)
	local, localErr := s.fallback.Analyze(ctx, req)
	if localErr != nil {
		return Outcome{}, localErr
	}
	return Outcome{Decomposition: local, FellBack: true, ProviderErr: err}, nil
}

// Cancel aborts the in-flight request for a task, if any.
func (s *Service) Cancel(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.requests[taskID]
	if !ok {
		return false
	}
	cur.cancel()
	delete(s.requests, taskID)
	s.pending.Remove(taskID)
	return true
}

// CancelAll aborts every in-flight request. Used on shutdown.
func (s *Service) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.requests {
		cur.cancel()
		delete(s.requests, id)
	}
	s.pending.Clear()
}

func (s *Service) InFlight(taskID string) bool {
	return s.pending.Contains(taskID)
}

func (s *Service) Pending() []string {
	return s.pending.Items()
}
