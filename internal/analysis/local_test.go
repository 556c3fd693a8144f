package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want model.TaskType
	}{
		{"Fix login bug in the API", model.TaskTypeCoding},
		{"Draft blog post about focus", model.TaskTypeWriting},
		{"Weekly sync meeting with design team", model.TaskTypeMeeting},
		{"Study chapter 4 for the exam", model.TaskTypeStudy},
		{"Wireframe the onboarding UI", model.TaskTypeDesign},
		{"Research and compare vector databases", model.TaskTypeResearch},
		{"File expense report invoice", model.TaskTypeAdmin},
		{"Reply to customer emails", model.TaskTypeCommunication},
		{"Water the plants", model.TaskTypeGeneral},
		{"写一篇关于番茄工作法的文章", model.TaskTypeWriting},
		{"Build the new feature", model.TaskTypeCoding},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(tc.text), tc.text)
	}
}

func TestLocalProviderGeneralSplit(t *testing.T) {
	p := NewLocalProvider()
	d, err := p.Analyze(context.Background(), Request{TaskID: "t1", Text: "Water the plants"})
	require.NoError(t, err)

	assert.Equal(t, model.TaskTypeGeneral, d.TaskType)
	assert.Equal(t, model.SourceLocal, d.Source)
	assert.Equal(t, DefaultTotalMinutes, d.TotalMinutes)
	require.Len(t, d.Steps, 4)
	got := []int{d.Steps[0].DurationMinutes, d.Steps[1].DurationMinutes, d.Steps[2].DurationMinutes, d.Steps[3].DurationMinutes}
	assert.Equal(t, []int{12, 12, 30, 6}, got)
	assert.Len(t, d.Tips, 3)
	require.NoError(t, d.Validate())
}

func TestLocalProviderUsesEstimate(t *testing.T) {
	d, err := NewLocalProvider().Analyze(context.Background(), Request{Text: "Refactor storage code", EstimatedMinutes: 100})
	require.NoError(t, err)
	assert.Equal(t, model.TaskTypeCoding, d.TaskType)
	assert.Equal(t, 100, d.TotalMinutes)
	assert.Equal(t, 100, d.StepMinutes())
	for i, step := range d.Steps {
		assert.Equal(t, i+1, step.Order)
	}
}

func TestTemplatesSplitToWholeDuration(t *testing.T) {
	for tt, tmpl := range templates {
		sum := 0
		for _, st := range tmpl.steps {
			sum += st.percent
		}
		assert.Equal(t, 100, sum, string(tt))
		assert.NotEmpty(t, tmpl.tips, string(tt))
	}
	assert.Len(t, templates, len(model.TaskTypes))
}
