package domain

import (
	"fmt"
	"strings"
)

// ResumeProject is one project extracted from a resume.
type ResumeProject struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Role         string   `json:"role"`
}

// ResumeExperience is one position extracted from a resume.
type ResumeExperience struct {
	Company          string   `json:"company"`
	Role             string   `json:"role"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// ResumeEducation is one degree extracted from a resume.
type ResumeEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// ResumeData is the structured form of a resume.
type ResumeData struct {
	Skills       []string           `json:"skills"`
	Projects     []ResumeProject    `json:"projects"`
	Experience   []ResumeExperience `json:"experience"`
	Education    []ResumeEducation  `json:"education"`
	Technologies []string           `json:"technologies"`
}

// Normalize replaces nil sections with empty ones so they serialize as [].
func (r *ResumeData) Normalize() {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Projects == nil {
		r.Projects = []ResumeProject{}
	}
	if r.Experience == nil {
		r.Experience = []ResumeExperience{}
	}
	if r.Education == nil {
		r.Education = []ResumeEducation{}
	}
	if r.Technologies == nil {
		r.Technologies = []string{}
	}
}

// IsEmpty reports whether no section carries data.
func (r ResumeData) IsEmpty() bool {
	return len(r.Skills) == 0 && len(r.Projects) == 0 && len(r.Experience) == 0 &&
		len(r.Education) == 0 && len(r.Technologies) == 0
}

// FormatContext renders a compact multi-line summary for prompts.
func (r ResumeData) FormatContext() string {
	var parts []string
	if len(r.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(head(r.Skills, 10), ", "))
	}
	if len(r.Projects) > 0 {
		ps := make([]string, 0, 3)
		for _, p := range headProjects(r.Projects, 3) {
			ps = append(ps, fmt.Sprintf("%s (%s)", p.Name, strings.Join(head(p.Technologies, 5), ", ")))
		}
		parts = append(parts, "Projects: "+strings.Join(ps, "; "))
	}
	if len(r.Experience) > 0 {
		es := make([]string, 0, 2)
		for i, e := range r.Experience {
			if i == 2 {
				break
			}
			es = append(es, e.Role+" at "+e.Company)
		}
		parts = append(parts, "Experience: "+strings.Join(es, "; "))
	}
	if len(r.Education) > 0 {
		ed := make([]string, 0, 2)
		for i, e := range r.Education {
			if i == 2 {
				break
			}
			ed = append(ed, e.Degree+" from "+e.Institution)
		}
		parts = append(parts, "Education: "+strings.Join(ed, "; "))
	}
	return strings.Join(parts, "\n")
}

func head(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

func headProjects(xs []ResumeProject, n int) []ResumeProject {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
