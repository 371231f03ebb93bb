package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	r := ResumeData{
		Skills: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
		Projects: []ResumeProject{
			{Name: "P1", Technologies: []string{"Go", "Redis", "Kafka", "Postgres", "Docker", "K8s"}},
			{Name: "P2", Technologies: []string{"Python"}},
			{Name: "P3"},
			{Name: "P4"},
		},
		Experience: []ResumeExperience{{Company: "Acme", Role: "SWE"}, {Company: "Init", Role: "Intern"}, {Company: "X", Role: "Y"}},
		Education:  []ResumeEducation{{Degree: "BSc CS", Institution: "MIT"}},
	}
	want := "Skills: a, b, c, d, e, f, g, h, i, j\n" +
		"Projects: P1 (Go, Redis, Kafka, Postgres, Docker); P2 (Python); P3 ()\n" +
		"Experience: SWE at Acme; Intern at Init\n" +
		"Education: BSc CS from MIT"
	assert.Equal(t, want, r.FormatContext())
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "", ResumeData{}.FormatContext())
	assert.True(t, ResumeData{}.IsEmpty())
}

func TestNormalize_EmptyArrays(t *testing.T) {
	var r ResumeData
	r.Normalize()
	b, err := json.Marshal(r)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"skills":[],"projects":[],"experience":[],"education":[],"technologies":[]}`, string(b))
}
