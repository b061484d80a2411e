package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/logging"
	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/prompt"
	"github.com/teemow/inboxdigest/internal/redact"
)

// GenerationObserver is notified after every generation call.
type GenerationObserver func(ctx context.Context, task prompt.Task, err error, duration time.Duration)

// Builder turns emails into summaries and actionable emails.
type Builder struct {
	Generator llm.Generator
	// Redactor is applied to every body. Nil disables redaction.
	Redactor *redact.Redactor
	// Temperature and MaxTokens are passed through on every call.
	Temperature float32
	MaxTokens   int32
	Logger      *slog.Logger
	Observe     GenerationObserver
}

// NewBuilder returns a Builder using the sampling parameters of profile.
func NewBuilder(gen llm.Generator, r *redact.Redactor, profile llm.Profile, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		Generator:   gen,
		Redactor:    r,
		Temperature: profile.Temperature,
		MaxTokens:   profile.MaxTokens,
		Logger:      logger,
	}
}

// BuildSummaries summarizes each email in order.
func (b *Builder) BuildSummaries(ctx context.Context, emails []mailbox.Email) ([]Summary, error) {
	out := make([]Summary, 0, len(emails))
	for i, email := range emails {
		text, err := b.generate(ctx, prompt.TaskSummary, email)
		if err != nil {
			return nil, fmt.Errorf("summarize email %d of %d: %w", i+1, len(emails), err)
		}
		out = append(out, Summary{Email: email, Body: text})
	}
	return out, nil
}

// BuildActionable produces a next step for each email in order.
func (b *Builder) BuildActionable(ctx context.Context, emails []mailbox.Email) ([]ActionableEmail, error) {
	out := make([]ActionableEmail, 0, len(emails))
	for i, email := range emails {
		text, err := b.generate(ctx, prompt.TaskNextSteps, email)
		if err != nil {
			return nil, fmt.Errorf("determine next steps for email %d of %d: %w", i+1, len(emails), err)
		}
		out = append(out, ActionableEmail{Email: email, NextSteps: text})
	}
	return out, nil
}

func (b *Builder) generate(ctx context.Context, task prompt.Task, email mailbox.Email) (string, error) {
	p := prompt.Format(email, b.Redactor)
	logger := b.logger()
	if p.Redacted {
		logger.Debug("prompt redacted",
			slog.String("task", task.String()),
			slog.String("email_id", email.ID))
	}

	start := time.Now()
	text, err := b.Generator.Generate(ctx, llm.Request{
		Prompt:      p.Body,
		System:      prompt.SystemInstructions(task, p.Redacted, b.Redactor),
		Temperature: b.Temperature,
		MaxTokens:   b.MaxTokens,
	})
	if b.Observe != nil {
		b.Observe(ctx, task, err, time.Since(start))
	}
	if err != nil {
		return "", err
	}

	logger.Debug("generated text",
		slog.String("task", task.String()),
		slog.String("email_id", email.ID),
		logging.Sender(email.Sender),
		slog.Duration(logging.KeyDuration, time.Since(start)))
	return text, nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
