package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxRisk(t *testing.T) {
	tests := []struct {
		name   string
		levels []RiskLevel
		want   RiskLevel
	}{
		{"none", nil, RiskLow},
		{"all low", []RiskLevel{RiskLow, RiskLow}, RiskLow},
		{"one medium", []RiskLevel{RiskLow, RiskMedium}, RiskMedium},
		{"high wins", []RiskLevel{RiskMedium, RiskHigh, RiskLow}, RiskHigh},
		{"case insensitive", []RiskLevel{"HIGH"}, RiskHigh},
		{"unknown counts as low", []RiskLevel{"spicy"}, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxRisk(tt.levels...))
		})
	}
}

func TestPlanAssess(t *testing.T) {
	p := Plan{Steps: []PlanStep{
		{ToolName: "draft_email"},
		{ToolName: "schedule_meeting", RiskLevel: RiskMedium, Confidence: 0.6},
	}}
	p.Assess()
	assert.Equal(t, RiskLow, p.Steps[0].RiskLevel)
	assert.Equal(t, 0.8, p.Steps[0].Confidence)
	assert.NotNil(t, p.Steps[0].ToolInput)
	assert.Equal(t, 0.6, p.Steps[1].Confidence)
	assert.Equal(t, RiskMedium, p.OverallRisk)
	assert.True(t, p.RequiresConfirmation)

	low := Plan{Steps: []PlanStep{{ToolName: "summarize_email", RiskLevel: RiskLow}}}
	low.Assess()
	assert.False(t, low.RequiresConfirmation)

	empty := Plan{}
	empty.Assess()
	assert.NotNil(t, empty.Steps)
	assert.Equal(t, RiskLow, empty.OverallRisk)
}

func TestToolNameKnown(t *testing.T) {
	assert.True(t, ToolSendEmail.Known())
	assert.True(t, ToolGenerateAnalytics.Known())
	assert.False(t, ToolName("rm_rf").Known())
}
