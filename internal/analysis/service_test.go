package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// blockingProvider waits for its context, or answers once released.
type blockingProvider struct {
	started chan string
	release chan struct{}
}

func (b *blockingProvider) Name() model.Source { return model.SourceOpenAI }

func (b *blockingProvider) Analyze(ctx context.Context, req Request) (model.Decomposition, error) {
	b.started <- req.TaskID
	select {
	case <-ctx.Done():
		return model.Decomposition{}, &ProviderError{Provider: model.SourceOpenAI, Op: "send", Err: ctx.Err()}
	case <-b.release:
		return model.Decomposition{TaskType: model.TaskTypeCoding, Source: model.SourceOpenAI}, nil
	}
}

type failingProvider struct{}

func (failingProvider) Name() model.Source { return model.SourceDeepSeek }

func (failingProvider) Analyze(context.Context, Request) (model.Decomposition, error) {
	return model.Decomposition{}, &ProviderError{Provider: model.SourceDeepSeek, Op: "status", Err: errors.New("HTTP 500")}
}

func TestServiceFallsBackToLocal(t *testing.T) {
	svc := NewService(ServiceOptions{Primary: failingProvider{}, Logger: logging.NewNop()})
	out, err := svc.Analyze(context.Background(), Request{TaskID: "t1", Text: "Reply to emails"})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	var perr *ProviderError
	assert.ErrorAs(t, out.ProviderErr, &perr)
	assert.Equal(t, model.SourceLocal, out.Decomposition.Source)
	assert.Equal(t, model.TaskTypeCommunication, out.Decomposition.TaskType)
	assert.False(t, svc.InFlight("t1"))
}

func TestServiceTimeoutFallsBack(t *testing.T) {
	p := &blockingProvider{started: make(chan string, 1), release: make(chan struct{})}
	svc := NewService(ServiceOptions{Primary: p, Timeout: 30 * time.Millisecond})
	out, err := svc.Analyze(context.Background(), Request{TaskID: "t1", Text: "x"})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
}

func TestServiceNewRequestCancelsPrevious(t *testing.T) {
	p := &blockingProvider{started: make(chan string, 2), release: make(chan struct{})}
	svc := NewService(ServiceOptions{Primary: p, Timeout: time.Minute})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Analyze(context.Background(), Request{TaskID: "t1", Text: "x"})
	}()
	<-p.started
	assert.True(t, svc.InFlight("t1"))

	done := make(chan Outcome, 1)
	go func() {
		out, err := svc.Analyze(context.Background(), Request{TaskID: "t1", Text: "x"})
		assert.NoError(t, err)
		done <- out
	}()
	<-p.started
	wg.Wait()
	assert.ErrorIs(t, firstErr, ErrCanceled)
	assert.True(t, svc.InFlight("t1"), "second request still tracked")

	close(p.release)
	out := <-done
	assert.False(t, out.FellBack)
	assert.False(t, svc.InFlight("t1"))
}

func TestServiceCancelAndCancelAll(t *testing.T) {
	p := &blockingProvider{started: make(chan string, 2), release: make(chan struct{})}
	svc := NewService(ServiceOptions{Primary: p, Timeout: time.Minute})

	errs := make(chan error, 2)
	for _, id := range []string{"a", "b"} {
		go func(id string) {
			_, err := svc.Analyze(context.Background(), Request{TaskID: id, Text: "x"})
			errs <- err
		}(id)
	}
	<-p.started
	<-p.started
	assert.ElementsMatch(t, []string{"a", "b"}, svc.Pending())

	assert.True(t, svc.Cancel("a"))
	assert.False(t, svc.Cancel("missing"))
	svc.CancelAll()

	assert.ErrorIs(t, <-errs, ErrCanceled)
	assert.ErrorIs(t, <-errs, ErrCanceled)
	assert.Empty(t, svc.Pending())
}
