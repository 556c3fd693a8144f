package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

const (
	// DefaultTimeout bounds a whole provider round trip.
	DefaultTimeout = 15 * time.Second

	openAIEndpoint   = "https://api.openai.com/v1/chat/completions"
	openAIModel      = "gpt-4o-mini"
	deepSeekEndpoint = "https://api.deepseek.com/chat/completions"
	deepSeekModel    = "deepseek-chat"

	maxErrorBody = 512
)

const systemPrompt = `You are a productivity assistant that breaks tasks into focused work steps.
Respond with ONLY a JSON object, no prose, in exactly this shape:
{"taskType": one of "coding","writing","meeting","study","design","research","admin","communication","general",
 "description": short summary of the plan,
 "steps": [{"text": step description, "duration": minutes as a number, "order": 1-based position}],
 "tips": [short practical tips as strings]}`

const userPromptTemplate = `Task: %s
Total time available: %d minutes.
Split the task into 3 to 6 steps whose durations add up to the total time.`

// ChatProvider calls an OpenAI-compatible chat-completion endpoint.
type ChatProvider struct {
	source     model.Source
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	now        func() time.Time
}

type ChatOption func(*ChatProvider)

func WithEndpoint(endpoint string) ChatOption {
	return func(p *ChatProvider) {
		if endpoint != "" {
			p.endpoint = endpoint
		}
	}
}

func WithModel(name string) ChatOption {
	return func(p *ChatProvider) {
		if name != "" {
			p.model = name
		}
	}
}

func WithTimeout(timeout time.Duration) ChatOption {
	return func(p *ChatProvider) {
		if timeout > 0 {
			p.httpClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(client *http.Client) ChatOption {
	return func(p *ChatProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

func WithClock(now func() time.Time) ChatOption {
	return func(p *ChatProvider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewChatProvider(source model.Source, apiKey string, opts ...ChatOption) (*ChatProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, source)
	}
	p := &ChatProvider{
		source:     source,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
	switch source {
	case model.SourceOpenAI:
		p.endpoint, p.model = openAIEndpoint, openAIModel
	case model.SourceDeepSeek:
		p.endpoint, p.model = deepSeekEndpoint, deepSeekModel
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, source)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *ChatProvider) Name() model.Source { return p.source }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *ChatProvider) fail(op string, err error) error {
	return &ProviderError{Provider: p.source, Op: op, Err: err}
}

func (p *ChatProvider) Analyze(ctx context.Context, req Request) (model.Decomposition, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, strings.TrimSpace(req.Text), req.totalMinutes())},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return model.Decomposition{}, p.fail("encode", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Decomposition{}, p.fail("request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return model.Decomposition{}, p.fail("send", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Decomposition{}, p.fail("read", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return model.Decomposition{}, p.fail("status", fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Decomposition{}, p.fail("decode", err)
	}
	if parsed.Error != nil {
		return model.Decomposition{}, p.fail("api", errors.New(parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return model.Decomposition{}, p.fail("decode", errors.New("response has no content"))
	}

	d, err := ParseDecomposition(parsed.Choices[0].Message.Content)
	if err != nil {
		return model.Decomposition{}, p.fail("validate", err)
	}
	d.Source = p.source
	d.AnalyzedAt = p.now()
	return d, nil
}

// ParseDecomposition validates a model reply and builds a decomposition from
// it. Markdown code fences around the JSON are tolerated. A missing
// description is replaced by a generated summary.
func ParseDecomposition(content string) (model.Decomposition, error) {
	payload := stripFences(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return model.Decomposition{}, fmt.Errorf("reply is not a JSON object: %w", err)
	}

	var typeName string
	if err := requireField(fields, "taskType", &typeName); err != nil {
		return model.Decomposition{}, err
	}

	var rawSteps []map[string]json.RawMessage
	if err := requireField(fields, "steps", &rawSteps); err != nil {
		return model.Decomposition{}, err
	}
	if len(rawSteps) == 0 {
		return model.Decomposition{}, errors.New("field \"steps\" is empty")
	}
	steps := make([]model.Step, 0, len(rawSteps))
	total := 0
	for i, rs := range rawSteps {
		step, err := parseStep(rs, i)
		if err != nil {
			return model.Decomposition{}, err
		}
		total += step.DurationMinutes
		steps = append(steps, step)
	}

	var tips []string
	if err := requireField(fields, "tips", &tips); err != nil {
		return model.Decomposition{}, err
	}

	taskType := model.ParseTaskType(typeName)
	var summary string
	if raw, ok := fields["description"]; ok {
		if err := json.Unmarshal(raw, &summary); err != nil {
			return model.Decomposition{}, fmt.Errorf("field \"description\" must be a string: %w", err)
		}
	}
	if strings.TrimSpace(summary) == "" {
		summary = fmt.Sprintf("A %d-step %s plan taking about %d minutes.", len(steps), taskType, total)
	}

	return model.Decomposition{
		TaskType:     taskType,
		Summary:      summary,
		TotalMinutes: total,
		Steps:        steps,
		Tips:         tips,
	}, nil
}

func parseStep(fields map[string]json.RawMessage, index int) (model.Step, error) {
	var text string
	if err := requireField(fields, "text", &text); err != nil {
		return model.Step{}, fmt.Errorf("step %d: %w", index+1, err)
	}
	if strings.TrimSpace(text) == "" {
		return model.Step{}, fmt.Errorf("step %d: text is empty", index+1)
	}
	var duration float64
	if err := requireField(fields, "duration", &duration); err != nil {
		return model.Step{}, fmt.Errorf("step %d: %w", index+1, err)
	}
	if duration <= 0 {
		return model.Step{}, fmt.Errorf("step %d: duration must be positive", index+1)
	}
	order := float64(index + 1)
	if raw, ok := fields["order"]; ok {
		if err := json.Unmarshal(raw, &order); err != nil {
			return model.Step{}, fmt.Errorf("step %d: order must be a number", index+1)
		}
	}
	return model.Step{
		Text:            strings.TrimSpace(text),
		DurationMinutes: int(math.Round(duration)),
		Order:           int(order),
	}, nil
}

func requireField(fields map[string]json.RawMessage, name string, out any) error {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("field %q is missing", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("field %q has the wrong type: %w", name, err)
	}
	return nil
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	if !strings.HasPrefix(s, "{") {
		start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}
