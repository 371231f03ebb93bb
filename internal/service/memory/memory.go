// Package memory renders per-user conversation memory on top of a
// domain.MemoryStore.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// Defaults for the rolling buffer.
const (
	DefaultMaxMessages = 20
	DefaultRecentLimit = 10
	RoleUser           = "user"
	RoleAssistant      = "assistant"
)

// Service is the conversation memory of every user.
type Service struct {
	store       domain.MemoryStore
	maxMessages int
	now         func() time.Time
}

// New returns a Service keeping at most maxMessages per user.
func New(store domain.MemoryStore, maxMessages int) *Service {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Service{store: store, maxMessages: maxMessages, now: time.Now}
}

// AddMessage appends one message.
func (s *Service) AddMessage(ctx context.Context, userID, role, content string) error {
	msg := domain.Message{Role: role, Content: content, Timestamp: s.now().UTC()}
	if err := s.store.Append(ctx, userID, s.maxMessages, msg); err != nil {
		return fmt.Errorf("op=memory.AddMessage: %w", err)
	}
	return nil
}

// AddInteraction appends a user message and the assistant's reply.
func (s *Service) AddInteraction(ctx context.Context, userID, userMessage, reply string) error {
	now := s.now().UTC()
	err := s.store.Append(ctx, userID, s.maxMessages,
		domain.Message{Role: RoleUser, Content: userMessage, Timestamp: now},
		domain.Message{Role: RoleAssistant, Content: reply, Timestamp: now},
	)
	if err != nil {
		return fmt.Errorf("op=memory.AddInteraction: %w", err)
	}
	return nil
}

// Recent returns up to limit newest messages; limit <= 0 uses 10.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	msgs, err := s.store.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("op=memory.Recent: %w", err)
	}
	return msgs, nil
}

// Summary describes the buffer; empty when the user has no messages.
func (s *Service) Summary(ctx context.Context, userID string) (string, error) {
	all, err := s.store.Recent(ctx, userID, 0)
	if err != nil {
		return "", fmt.Errorf("op=memory.Summary: %w", err)
	}
	if len(all) == 0 {
		return "", nil
	}
	return fmt.Sprintf("Recent conversation with %d messages", len(all)), nil
}

// SetPreference records a user preference.
func (s *Service) SetPreference(ctx context.Context, userID, key string, value any) error {
	if err := s.store.SetPreference(ctx, userID, key, value); err != nil {
		return fmt.Errorf("op=memory.SetPreference: %w", err)
	}
	return nil
}

// Preferences returns the user's preference map, never nil.
func (s *Service) Preferences(ctx context.Context, userID string) (map[string]any, error) {
	prefs, err := s.store.Preferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("op=memory.Preferences: %w", err)
	}
	if prefs == nil {
		prefs = map[string]any{}
	}
	return prefs, nil
}

// PromptContext renders the summary and preferences for a system prompt.
func (s *Service) PromptContext(ctx context.Context, userID string) (string, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return "", err
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return "", err
	}
	var parts []string
	if summary != "" {
		parts = append(parts, "Previous conversation summary: "+summary)
	}
	if len(prefs) > 0 {
		b, _ := json.Marshal(prefs)
		parts = append(parts, "User preferences: "+string(b))
	}
	return strings.Join(parts, "\n"), nil
}

// View is the memory projection served by GET /memory/{user_id}.
type View struct {
	RecentHistory []domain.Message `json:"recent_history"`
	Summary       string           `json:"summary"`
	Context       map[string]any   `json:"context"`
}

// Describe assembles the View for a user.
func (s *Service) Describe(ctx context.Context, userID string) (View, error) {
	recent, err := s.Recent(ctx, userID, DefaultRecentLimit)
	if err != nil {
		return View{}, err
	}
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return View{}, err
	}
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if recent == nil {
		recent = []domain.Message{}
	}
	return View{RecentHistory: recent, Summary: summary, Context: prefs}, nil
}
