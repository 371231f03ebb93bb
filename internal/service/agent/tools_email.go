package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-agent/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

// DefaultTone is used when a draft request names none.
const DefaultTone = "professional"

// EmailDraft is the result of draft_email.
type EmailDraft struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Tone      string `json:"tone"`
}

// SendResult is the result of send_email. Delivery failures are reported in
// Error rather than returned as Go errors.
type SendResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ToneResult is the result of detect_tone.
type ToneResult struct {
	Tone       string  `json:"tone"`
	Confidence float64 `json:"confidence"`
}

// Validate rejects replies without a tone label.
func (t *ToneResult) Validate() error {
	if strings.TrimSpace(t.Tone) == "" {
		return fmt.Errorf("tone missing")
	}
	return nil
}

// EmailTools drafts, summarizes and sends email.
type EmailTools struct {
	llm    domain.LLMClient
	mailer domain.Mailer
}

// NewEmailTools returns the email toolset; a nil or unconfigured mailer
// makes send_email a mock.
func NewEmailTools(llm domain.LLMClient, mailer domain.Mailer) *EmailTools {
	return &EmailTools{llm: llm, mailer: mailer}
}

// Draft writes an email body in the requested tone.
func (e *EmailTools) Draft(ctx context.Context, recipient, subject, details, tone string) (EmailDraft, error) {
	if strings.TrimSpace(tone) == "" {
		tone = DefaultTone
	}
	system := fmt.Sprintf(`You are an expert email writer. Draft a %s email based on the context provided.
The email should be clear, concise, and appropriate for the %s tone.
Subject: %s
Recipient: %s

Return the email body only. Do not include the subject line in the body.`, tone, tone, subject, recipient)
	body, err := e.llm.Chat(ctx, domain.ChatRequest{
		System:      system,
		User:        "Context: " + details,
		Temperature: 0.7,
		Operation:   "draft_email",
	})
	if err != nil {
		return EmailDraft{}, fmt.Errorf("op=agent.Draft: %w", err)
	}
	return EmailDraft{Recipient: recipient, Subject: subject, Body: strings.TrimSpace(body), Tone: tone}, nil
}

// Send delivers the email, or pretends to when no mailer is configured.
func (e *EmailTools) Send(ctx context.Context, recipient, subject, body string) SendResult {
	if e.mailer == nil || !e.mailer.Configured() {
		obsctx.LoggerFromContext(ctx).Warn("smtp not configured, mock sending email", slog.String("recipient", recipient))
		return SendResult{
			Success:   true,
			Message:   fmt.Sprintf("[MOCK] Email sent to %s (Configure SMTP to send real emails)", recipient),
			Recipient: recipient,
		}
	}
	err := e.mailer.Send(ctx, domain.OutgoingEmail{To: recipient, Subject: subject, Body: body})
	if err != nil {
		return SendResult{Success: false, Error: err.Error()}
	}
	return SendResult{
		Success:   true,
		Message:   "Email sent successfully to " + recipient,
		Recipient: recipient,
		Subject:   subject,
	}
}

// Summarize condenses an email into a few bullet points.
func (e *EmailTools) Summarize(ctx context.Context, content string) (string, error) {
	out, err := e.llm.Chat(ctx, domain.ChatRequest{
		System:    "Summarize the following email into 2-3 key bullet points.",
		User:      content,
		Operation: "summarize_email",
	})
	if err != nil {
		return "", fmt.Errorf("op=agent.Summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// DetectTone classifies the tone of text; unknown with zero confidence
// when the model cannot answer.
func (e *EmailTools) DetectTone(ctx context.Context, text string) ToneResult {
	res, _ := ai.CallJSON(ctx, e.llm, domain.ChatRequest{
		System:    "Analyze the tone of the following text. Return a JSON object with 'tone' (e.g., professional, casual, urgent, angry) and 'confidence' (0.0-1.0).",
		User:      text,
		Operation: "detect_tone",
	}, ToneResult{Tone: "unknown", Confidence: 0})
	return res
}

// Tools exposes the email capabilities to the registry.
func (e *EmailTools) Tools() []Tool {
	return []Tool{
		{
			Name:        domain.ToolSendEmail,
			Group:       GroupEmail,
			Description: "Sends an email to the specified recipient using SMTP configuration. Input: {recipient, subject, body}",
			PrimaryArg:  "recipient",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				recipient := argString(args, "recipient", "")
				if recipient == "" {
					return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidArgument)
				}
				return e.Send(ctx, recipient, argString(args, "subject", ""), argString(args, "body", "")), nil
			},
		},
		{
			Name:        domain.ToolDraftEmail,
			Group:       GroupEmail,
			Description: "Drafts an email using AI based on context and desired tone. Input: {recipient, subject, context, tone}",
			PrimaryArg:  "context",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return e.Draft(ctx,
					argString(args, "recipient", ""),
					argString(args, "subject", ""),
					argString(args, "context", ""),
					argString(args, "tone", DefaultTone))
			},
		},
		{
			Name:        domain.ToolSummarizeEmail,
			Group:       GroupEmail,
			Description: "Summarizes the content of an email into key points. Input: email_content",
			PrimaryArg:  "email_content",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return e.Summarize(ctx, argString(args, "email_content", ""))
			},
		},
		{
			Name:        domain.ToolDetectTone,
			Group:       GroupEmail,
			Description: "Analyzes the tone of the provided text. Input: text",
			PrimaryArg:  "text",
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return e.DetectTone(ctx, argString(args, "text", "")), nil
			},
		},
	}
}
