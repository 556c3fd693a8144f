package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

type stepTemplate struct {
	text    string
	percent int
}

type typeTemplate struct {
	keywords []string
	steps    []stepTemplate
	tips     []string
}

var templates = map[model.TaskType]typeTemplate{
	model.TaskTypeCoding: {
		keywords: []string{"code", "coding", "bug", "fix", "implement", "refactor", "api", "deploy", "test", "tests", "debug", "feature", "merge", "代码", "开发", "编程", "调试"},
		steps: []stepTemplate{
			{"Read the requirements and relevant code", 15},
			{"Sketch the approach and interfaces", 15},
			{"Implement the change", 50},
			{"Test, review and clean up", 20},
		},
		tips: []string{"Commit small, working increments", "Write the failing test first when you can", "Silence chat notifications while coding"},
	},
	model.TaskTypeWriting: {
		keywords: []string{"write", "draft", "article", "blog", "report", "doc", "docs", "essay", "proposal", "copy", "post", "写", "文章", "报告", "文档"},
		steps: []stepTemplate{
			{"Collect notes and define the audience", 15},
			{"Outline the structure", 15},
			{"Write the first draft", 50},
			{"Edit and proofread", 20},
		},
		tips: []string{"Draft first, edit later", "Keep one idea per paragraph", "Read the final version aloud"},
	},
	model.TaskTypeMeeting: {
		keywords: []string{"meeting", "meet", "call", "sync", "standup", "interview", "1:1", "demo", "会议", "面试"},
		steps: []stepTemplate{
			{"Review the agenda and context", 20},
			{"Prepare talking points and questions", 20},
			{"Attend and take notes", 45},
			{"Send a summary with action items", 15},
		},
		tips: []string{"Write down decisions and owners", "Share the agenda beforehand", "End with clear next steps"},
	},
	model.TaskTypeStudy: {
		keywords: []string{"study", "learn", "read", "course", "exam", "chapter", "lecture", "homework", "practice", "学习", "复习", "考试", "阅读"},
		steps: []stepTemplate{
			{"Skim the material and set goals", 15},
			{"Study the core content", 50},
			{"Practice with exercises", 25},
			{"Summarize what you learned", 10},
		},
		tips: []string{"Explain the topic in your own words", "Use active recall instead of rereading", "Take a short break between sessions"},
	},
	model.TaskTypeDesign: {
		keywords: []string{"design", "mockup", "ui", "ux", "wireframe", "logo", "prototype", "figma", "layout", "设计", "原型"},
		steps: []stepTemplate{
			{"Gather references and constraints", 15},
			{"Sketch rough concepts", 25},
			{"Build the detailed design", 45},
			{"Review and collect feedback", 15},
		},
		tips: []string{"Start in low fidelity", "Check contrast and spacing early", "Keep a list of open questions"},
	},
	model.TaskTypeResearch: {
		keywords: []string{"research", "investigate", "analyze", "analyse", "compare", "survey", "evaluate", "explore", "benchmark", "调研", "研究", "分析"},
		steps: []stepTemplate{
			{"Frame the question and success criteria", 15},
			{"Collect sources and data", 35},
			{"Analyze and compare findings", 35},
			{"Write up conclusions", 15},
		},
		tips: []string{"Record sources as you go", "Timebox each line of inquiry", "Separate facts from opinions"},
	},
	model.TaskTypeAdmin: {
		keywords: []string{"invoice", "expense", "expenses", "schedule", "organize", "file", "tax", "taxes", "admin", "paperwork", "book", "renew", "整理", "报销", "行政"},
		steps: []stepTemplate{
			{"List everything that needs handling", 20},
			{"Gather the documents you need", 20},
			{"Process the items", 45},
			{"File and confirm completion", 15},
		},
		tips: []string{"Batch similar chores together", "Use checklists for recurring admin", "Archive as soon as you finish"},
	},
	model.TaskTypeCommunication: {
		keywords: []string{"email", "emails", "reply", "message", "messages", "slack", "respond", "inbox", "follow", "announce", "邮件", "回复", "沟通"},
		steps: []stepTemplate{
			{"Triage and prioritize messages", 20},
			{"Draft the important replies", 45},
			{"Send and follow up", 25},
			{"Clear the remaining queue", 10},
		},
		tips: []string{"Answer quick ones immediately", "Use templates for common replies", "Close the inbox when done"},
	},
	model.TaskTypeGeneral: {
		steps: []stepTemplate{
			{"Clarify the goal and requirements", 20},
			{"Prepare the resources and tools", 20},
			{"Do the core work", 50},
			{"Check and polish the result", 10},
		},
		tips: []string{"Stay focused and avoid distractions", "Take regular breaks to keep your pace", "Note important ideas and progress as you go"},
	},
}

// LocalProvider is the deterministic rule-based classifier. It never fails.
type LocalProvider struct {
	now func() time.Time
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{now: time.Now}
}

func (p *LocalProvider) Name() model.Source { return model.SourceLocal }

func (p *LocalProvider) Analyze(_ context.Context, req Request) (model.Decomposition, error) {
	taskType := Classify(req.Text)
	tmpl := templates[taskType]
	total := req.totalMinutes()

	steps := make([]model.Step, 0, len(tmpl.steps))
	for i, st := range tmpl.steps {
		steps = append(steps, model.Step{
			Text:            st.text,
			DurationMinutes: int(math.Round(float64(total) * float64(st.percent) / 100)),
			Order:           i + 1,
		})
	}
	return model.Decomposition{
		TaskType:     taskType,
		Summary:      fmt.Sprintf("Plan for %q: work through these %d steps to finish in about %d minutes.", strings.TrimSpace(req.Text), len(steps), total),
		TotalMinutes: total,
		Steps:        steps,
		Tips:         append([]string(nil), tmpl.tips...),
		Source:       model.SourceLocal,
		AnalyzedAt:   p.now(),
	}, nil
}

// Classify picks the task type with the most keyword hits. Ties go to the
// earlier type in model.TaskTypes; no hits means general.
func Classify(text string) model.TaskType {
	lower := strings.ToLower(text)
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ':'
	}) {
		words[w] = struct{}{}
	}

	best, bestHits := model.TaskTypeGeneral, 0
	for _, tt := range model.TaskTypes {
		hits := 0
		for _, kw := range templates[tt].keywords {
			if isASCII(kw) {
				if _, ok := words[kw]; ok {
					hits++
				}
				continue
			}
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = tt, hits
		}
	}
	return best
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
