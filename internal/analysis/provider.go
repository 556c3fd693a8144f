// Package analysis turns a task into a step-by-step decomposition, either
// with the built-in rule-based classifier or an OpenAI-compatible
// chat-completion endpoint.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// DefaultTotalMinutes is used when a task has no estimate.
const DefaultTotalMinutes = 60

var (
	ErrUnknownProvider = errors.New("analysis: unknown provider")
	ErrMissingAPIKey   = errors.New("analysis: api key is required")
	ErrCanceled        = errors.New("analysis: request canceled")
)

type Request struct {
	TaskID           string
	Text             string
	EstimatedMinutes int
}

func (r Request) totalMinutes() int {
	if r.EstimatedMinutes > 0 {
		return r.EstimatedMinutes
	}
	return DefaultTotalMinutes
}

type Provider interface {
	Name() model.Source
	Analyze(ctx context.Context, req Request) (model.Decomposition, error)
}

// ProviderError wraps every failure of a remote provider: transport,
// timeout, HTTP status, or a response that fails validation.
type ProviderError struct {
	Provider model.Source
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("analysis: %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewFromSettings builds the provider named in settings. Disabled or empty
// settings select the local provider.
func NewFromSettings(settings model.ProviderSettings, opts ...ChatOption) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(settings.Provider))
	switch name {
	case string(model.SourceLocal), "":
		return NewLocalProvider(), nil
	case string(model.SourceOpenAI), string(model.SourceDeepSeek):
		if !settings.Enabled {
			return NewLocalProvider(), nil
		}
		if settings.Model != "" {
			opts = append([]ChatOption{WithModel(settings.Model)}, opts...)
		}
		return NewChatProvider(model.Source(name), settings.APIKey, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, settings.Provider)
	}
}
