package domain

import "math"

// SkillBreakdown scores the four skill dimensions in [0,100].
type SkillBreakdown struct {
	Technical       float64 `json:"technical"`
	Communication   float64 `json:"communication"`
	ProblemSolving  float64 `json:"problem_solving"`
	DomainKnowledge float64 `json:"domain_knowledge"`
}

// ConversationSummary is the model generated recap of an interview. All
// fields are optional; an empty summary serializes to {}.
type ConversationSummary struct {
	KeyTopics             []string `json:"key_topics,omitempty"`
	DemonstratedStrengths []string `json:"demonstrated_strengths,omitempty"`
	AreasToExplore        []string `json:"areas_to_explore,omitempty"`
	FlowQuality           string   `json:"flow_quality,omitempty"`
	Summary               string   `json:"summary,omitempty"`
}

// ConversationalMetrics is merged into analytics at completion.
type ConversationalMetrics struct {
	AvgConfidence       float64             `json:"avg_confidence"`
	AvgClarity          float64             `json:"avg_clarity"`
	AvgRelevance        float64             `json:"avg_relevance"`
	InterviewType       InterviewType       `json:"interview_type"`
	FinalDifficulty     Difficulty          `json:"final_difficulty"`
	TotalQuestions      int                 `json:"total_questions"`
	ConversationSummary ConversationSummary `json:"conversation_summary"`
}

// Analytics is the final report of a completed interview.
type Analytics struct {
	Score                 float64                `json:"score"`
	Feedback              string                 `json:"feedback"`
	SkillBreakdown        SkillBreakdown         `json:"skill_breakdown"`
	AreasOfImprovement    []string               `json:"areas_of_improvement"`
	RecommendedResources  []string               `json:"recommended_resources"`
	ResumeAlignment       string                 `json:"resume_alignment"`
	ReadinessScore        float64                `json:"readiness_score"`
	NextSteps             string                 `json:"next_steps"`
	ConversationalMetrics *ConversationalMetrics `json:"conversational_metrics,omitempty"`
}

// FallbackAnalytics derives a report purely from the metric series. A
// dimension without entries is treated as 70.
func FallbackAnalytics(m Metrics) Analytics {
	conf := meanOr(m.Confidence, 70)
	clar := meanOr(m.Clarity, 70)
	rel := meanOr(m.Relevance, 70)
	overall := math.Trunc((conf + clar + rel) / 3)
	return Analytics{
		Score:    overall,
		Feedback: "Overall good performance with room for improvement in specific areas.",
		SkillBreakdown: SkillBreakdown{
			Technical:       math.Trunc(rel),
			Communication:   math.Trunc(clar),
			ProblemSolving:  math.Trunc(conf),
			DomainKnowledge: math.Trunc((conf + rel) / 2),
		},
		AreasOfImprovement: []string{
			"Provide more specific examples",
			"Improve answer structure",
			"Show more confidence in responses",
		},
		RecommendedResources: []string{
			"Practice STAR method for behavioral questions",
			"Review technical fundamentals",
			"Mock interview practice",
		},
		ResumeAlignment: "Good alignment between resume and interview performance",
		ReadinessScore:  overall,
		NextSteps:       "Continue practicing and focus on areas of improvement",
	}
}

func meanOr(xs []float64, def float64) float64 {
	if len(xs) == 0 {
		return def
	}
	return mean(xs)
}

// ClampScore bounds a score to [0,100].
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
