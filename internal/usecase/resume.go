package usecase

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
	"github.com/fairyhunter13/ai-interview-agent/pkg/textx"
)

// MinResumeChars is the shortest trimmed resume worth parsing.
const MinResumeChars = 50

// tokenModel selects the tokenizer used for prompt budgets.
const tokenModel = "gpt-4"

const resumeParserPrompt = `You are an expert resume parser. Extract structured information from the resume text.

CRITICAL: Return ONLY valid JSON, no markdown, no explanations, no code blocks.

Extract the following sections:

1. **skills**: Array of technical skills (programming languages, frameworks, tools, technologies)
2. **projects**: Array of objects with:
   - name: Project name
   - description: Brief description (1-2 sentences)
   - technologies: Array of technologies used
   - role: Candidate's role in the project
3. **experience**: Array of objects with:
   - company: Company name
   - role: Job title/role
   - duration: Time period (e.g., "2022-2024" or "Jan 2022 - Present")
   - responsibilities: Array of key responsibilities (max 3)
4. **education**: Array of objects with:
   - degree: Degree name
   - institution: School/University name
   - year: Graduation year or period
5. **technologies**: Array of all technologies/tools mentioned (deduplicated from skills and projects)

Return ONLY this JSON structure:
{"skills": [], "projects": [{"name": "", "description": "", "technologies": [], "role": ""}], "experience": [{"company": "", "role": "", "duration": "", "responsibilities": []}], "education": [{"degree": "", "institution": "", "year": ""}], "technologies": []}

If a section is not found in the resume, use an empty array [].`

// ResumeService turns resume text or uploads into structured data.
type ResumeService struct {
	LLM         domain.LLMClient
	Extractor   domain.TextExtractor
	TokenBudget int
}

// NewResumeService constructs a ResumeService. extractor may be nil when
// uploads are not served.
func NewResumeService(llm domain.LLMClient, extractor domain.TextExtractor, tokenBudget int) ResumeService {
	return ResumeService{LLM: llm, Extractor: extractor, TokenBudget: tokenBudget}
}

// Extract converts an uploaded document to sanitized text.
func (s ResumeService) Extract(ctx domain.Context, fileName string, data []byte) (domain.ExtractedDocument, error) {
	if s.Extractor == nil {
		return domain.ExtractedDocument{}, fmt.Errorf("op=usecase.Extract: %w: no text extractor configured", domain.ErrInternal)
	}
	if len(data) == 0 {
		return domain.ExtractedDocument{}, fmt.Errorf("op=usecase.Extract: %w: empty file", domain.ErrInvalidArgument)
	}
	doc, err := s.Extractor.Extract(ctx, fileName, data)
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("op=usecase.Extract: %w", err)
	}
	doc.Text = textx.SanitizeText(textx.NormalizeNewlines(doc.Text))
	return doc, nil
}

// PromptText truncates resume text to the configured token budget.
func (s ResumeService) PromptText(text string) string {
	if s.TokenBudget <= 0 {
		return text
	}
	out, _ := tokencount.Truncate(text, tokenModel, s.TokenBudget)
	return out
}

// Parse extracts structured resume data. Short input yields an empty
// structure; model failures fall back to keyword extraction.
func (s ResumeService) Parse(ctx domain.Context, text string) domain.ResumeData {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinResumeChars {
		return emptyResume()
	}
	fallback := FallbackParseResume(text)
	if s.LLM == nil {
		return fallback
	}
	data, ok := ai.CallJSON(ctx, s.LLM, domain.ChatRequest{
		System:      resumeParserPrompt,
		User:        "Resume Text:\n\n" + s.PromptText(text),
		Temperature: 0.3,
		Operation:   "parse_resume",
	}, fallback)
	data.Normalize()
	obsctx.LoggerFromContext(ctx).Debug("resume parsed",
		slog.Bool("model", ok),
		slog.Int("skills", len(data.Skills)),
		slog.Int("projects", len(data.Projects)))
	return data
}

func emptyResume() domain.ResumeData {
	var r domain.ResumeData
	r.Normalize()
	return r
}

// resumeKeywords is the fixed technology list of the keyword extractor.
var resumeKeywords = []string{
	"Python", "JavaScript", "Java", "C++", "C#", "Ruby", "Go", "Rust",
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask",
	"MongoDB", "PostgreSQL", "MySQL", "Redis", "Docker", "Kubernetes",
	"AWS", "Azure", "GCP", "Git", "Jenkins", "CI/CD", "REST", "GraphQL",
	"HTML", "CSS", "TypeScript", "Swift", "Kotlin", "PHP", "SQL",
}

var (
	projectHeader    = regexp.MustCompile(`(?i)projects?[\s:]+`)
	experienceHeader = regexp.MustCompile(`(?i)(?:work )?experience[\s:]+`)
	educationHeader  = regexp.MustCompile(`(?i)education[\s:]+`)
	// sectionEnd marks a blank line or a line opening with a capitalised word.
	sectionEnd = regexp.MustCompile(`\n\n|\n[A-Za-z]{3,}`)
)

// FallbackParseResume is the model-free extractor: fixed keywords plus
// PROJECT, EXPERIENCE and EDUCATION sections (at most 3, 2 and 2).
func FallbackParseResume(text string) domain.ResumeData {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinResumeChars {
		return emptyResume()
	}
	techs := matchKeywords(text)
	out := emptyResume()
	out.Skills = append(out.Skills, techs...)
	out.Technologies = append(out.Technologies, techs...)

	for _, sec := range sections(text, projectHeader, 500, 3) {
		used := matchKeywords(sec)
		if used == nil {
			used = []string{}
		}
		out.Projects = append(out.Projects, domain.ResumeProject{
			Name:         "Project",
			Description:  textx.Clip(sec, 200),
			Technologies: used,
			Role:         "Developer",
		})
	}
	for _, sec := range sections(text, experienceHeader, 500, 2) {
		out.Experience = append(out.Experience, domain.ResumeExperience{
			Company:          "Company",
			Role:             "Software Engineer",
			Duration:         "2022-2024",
			Responsibilities: []string{textx.Clip(sec, 150)},
		})
	}
	for range sections(text, educationHeader, 300, 2) {
		out.Education = append(out.Education, domain.ResumeEducation{
			Degree:      "Bachelor's Degree",
			Institution: "University",
			Year:        "2024",
		})
	}
	return out
}

// sections returns the bodies following header, each ending at the next
// blank line or capitalised line. Bodies longer than maxRunes are skipped.
// A header inside an earlier body does not start a new section.
func sections(text string, header *regexp.Regexp, maxRunes, limit int) []string {
	var out []string
	pos := 0
	for _, loc := range header.FindAllStringIndex(text, -1) {
		if len(out) == limit {
			break
		}
		if loc[0] < pos {
			continue
		}
		rest := text[loc[1]:]
		if end := sectionEnd.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		pos = loc[1] + len(rest)
		if utf8.RuneCountInString(rest) > maxRunes {
			continue
		}
		if body := strings.TrimSpace(rest); body != "" {
			out = append(out, body)
		}
	}
	return out
}

// matchKeywords returns the keywords occurring in text as whole words,
// ignoring case, in keyword list order.
func matchKeywords(text string) []string {
	upper := strings.ToUpper(text)
	var found []string
	for _, kw := range resumeKeywords {
		if containsWord(upper, strings.ToUpper(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

func containsWord(haystack, word string) bool {
	for start := 0; start < len(haystack); {
		i := strings.Index(haystack[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if !wordRuneBefore(haystack, i) && !wordRuneAfter(haystack, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
