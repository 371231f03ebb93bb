package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// QuestionBankYAML is the file layout of a fallback question bank:
//
//	hr:
//	  - "Tell me about yourself."
//	technical:
//	  - "What makes you a good fit for %s?"
type QuestionBankYAML map[string][]string

// LoadQuestionBank reads a YAML question bank. Types missing from the file
// keep the built-in questions. An empty path returns the built-in bank.
func LoadQuestionBank(path string) (domain.QuestionBank, error) {
	bank := domain.QuestionBank{}
	for k, v := range domain.DefaultQuestionBank {
		bank[k] = v
	}
	if strings.TrimSpace(path) == "" {
		return bank, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("question bank not found: %s", absPath)
	}
	// #nosec G304 -- operator supplied configuration file
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var raw QuestionBankYAML
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no questions found in %s", path)
	}
	for k, qs := range raw {
		cleaned := make([]string, 0, len(qs))
		for _, q := range qs {
			if q = strings.TrimSpace(q); q != "" {
				cleaned = append(cleaned, q)
			}
		}
		if len(cleaned) == 0 {
			continue
		}
		bank[domain.ParseInterviewType(k)] = cleaned
	}
	return bank, nil
}
