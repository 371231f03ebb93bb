package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_TechnicalOrder(t *testing.T) {
	qs := DefaultQuestionBank.Fallback(InterviewTechnical, "Backend Engineer", DifficultyHard)
	require.Len(t, qs, 5)
	want := []string{
		"Explain your approach to solving complex technical problems.",
		"What technical skills make you a good fit for Backend Engineer?",
		"Describe a challenging technical project you've worked on.",
		"How do you stay updated with new technologies?",
		"Walk me through your debugging process.",
	}
	for i, q := range qs {
		assert.Equal(t, want[i], q.Text)
		assert.Equal(t, "technical", q.Category)
		assert.Equal(t, DifficultyHard, q.Difficulty)
		assert.False(t, q.IsFollowup)
	}
}

func TestFallback_UnknownTypeUsesHR(t *testing.T) {
	for _, it := range []InterviewType{InterviewGeneral, "", "pairing"} {
		qs := DefaultQuestionBank.Fallback(it, "Designer", DifficultyEasy)
		require.Len(t, qs, 5)
		assert.Equal(t, "Tell me about yourself and what motivates you.", qs[0].Text)
		assert.Equal(t, "Why are you interested in the Designer role?", qs[1].Text)
		assert.Equal(t, "hr", qs[0].Category)
	}
}

func TestFallback_CustomBankKeepsPercentLiterals(t *testing.T) {
	bank := QuestionBank{InterviewHR: {"Rate yourself 0-100%", "Why %s?"}}
	qs := bank.Fallback(InterviewHR, "SRE", DifficultyMedium)
	assert.Equal(t, "Rate yourself 0-100%", qs[0].Text)
	assert.Equal(t, "Why SRE?", qs[1].Text)
}

func TestDefaultEvaluation(t *testing.T) {
	ev := DefaultEvaluation()
	assert.Equal(t, 70.0, ev.Confidence)
	assert.Equal(t, 70.0, ev.Clarity)
	assert.Equal(t, 70.0, ev.Relevance)
	assert.Equal(t, 70.0, ev.OverallScore)
	assert.Equal(t, "Good response with relevant details.", ev.Feedback)
}

func TestFallbackAnalytics(t *testing.T) {
	a := FallbackAnalytics(Metrics{Confidence: []float64{80, 90}, Clarity: []float64{70, 70}, Relevance: []float64{60, 61}})
	assert.Equal(t, 71.0, a.Score) // (85+70+60.5)/3 = 71.83
	assert.Equal(t, a.Score, a.ReadinessScore)
	assert.Equal(t, 60.0, a.SkillBreakdown.Technical)
	assert.Equal(t, 70.0, a.SkillBreakdown.Communication)
	assert.Equal(t, 85.0, a.SkillBreakdown.ProblemSolving)
	assert.Equal(t, 72.0, a.SkillBreakdown.DomainKnowledge)
	assert.Len(t, a.AreasOfImprovement, 3)
	assert.Len(t, a.RecommendedResources, 3)

	empty := FallbackAnalytics(Metrics{})
	assert.Equal(t, 70.0, empty.Score)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-3))
	assert.Equal(t, 100.0, ClampScore(130))
	assert.Equal(t, 55.5, ClampScore(55.5))
}
