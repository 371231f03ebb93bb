package domain

import "strings"

// QuestionBank maps an interview type to question templates. A template may
// contain a single %s which is replaced by the job role.
type QuestionBank map[InterviewType][]string

// DefaultQuestionBank is used whenever question generation fails.
var DefaultQuestionBank = QuestionBank{
	InterviewHR: {
		"Tell me about yourself and what motivates you.",
		"Why are you interested in the %s role?",
		"How do you handle conflicts in a team?",
		"What are your career goals for the next 5 years?",
		"Describe your ideal work environment.",
	},
	InterviewTechnical: {
		"Explain your approach to solving complex technical problems.",
		"What technical skills make you a good fit for %s?",
		"Describe a challenging technical project you've worked on.",
		"How do you stay updated with new technologies?",
		"Walk me through your debugging process.",
	},
	InterviewBehavioral: {
		"Tell me about a time you faced a difficult challenge at work.",
		"Describe a situation where you had to work under pressure.",
		"Give an example of when you showed leadership.",
		"Tell me about a time you failed and what you learned.",
		"Describe how you handle constructive criticism.",
	},
	InterviewSituational: {
		"How would you handle a disagreement with your manager?",
		"What would you do if you missed an important deadline?",
		"How would you prioritize multiple urgent tasks?",
		"What would you do if you discovered a critical bug in production?",
		"How would you handle a difficult team member?",
	},
}

// Fallback builds the static question set for it. Unknown types use hr.
func (b QuestionBank) Fallback(it InterviewType, jobRole string, d Difficulty) []Question {
	category := it
	templates, ok := b[it]
	if !ok || len(templates) == 0 {
		category = InterviewHR
		templates = b[InterviewHR]
		if len(templates) == 0 {
			templates = DefaultQuestionBank[InterviewHR]
		}
	}
	out := make([]Question, 0, len(templates))
	for _, t := range templates {
		out = append(out, Question{Text: interpolateRole(t, jobRole), Category: string(category), Difficulty: d})
	}
	return out
}

func interpolateRole(tmpl, role string) string {
	return strings.Replace(tmpl, "%s", role, 1)
}

// DefaultEvaluation is substituted when a response cannot be scored.
func DefaultEvaluation() Evaluation {
	return Evaluation{
		Confidence:   70,
		Clarity:      70,
		Relevance:    70,
		OverallScore: 70,
		Feedback:     "Good response with relevant details.",
		Strength:     "Clear communication",
		Improvement:  "Could add more specific examples",
	}
}
