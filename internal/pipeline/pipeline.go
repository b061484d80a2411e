package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxdigest/internal/delivery"
	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/instrumentation"
	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/logging"
	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/prompt"
	"github.com/teemow/inboxdigest/internal/report"
)

// Pipeline wires the collaborators of one run. Provider and Backend are
// labels for logs and metrics.
type Pipeline struct {
	Mailbox    mailbox.Mailbox
	Compiler   *report.Compiler
	Categories []grouping.Category
	Deliverer  delivery.Deliverer
	MaxEmails  int

	Provider string
	Backend  string

	Logger   *slog.Logger
	Metrics  *instrumentation.Metrics
	NewRunID func() string
}

// Run produces and delivers the report for account. It returns nil when the
// run ended with a reported or logged collaborator failure.
func (p *Pipeline) Run(ctx context.Context, account string) (err error) {
	runID := p.newRunID()
	logger := logging.WithRunID(logging.WithAccount(p.logger(), account), runID)
	start := time.Now()
	status := instrumentation.StatusSuccess

	ctx, span := instrumentation.StartSpan(ctx, instrumentation.StageRun,
		attribute.String(instrumentation.SpanAttrRunID, runID),
		attribute.String(instrumentation.SpanAttrAccount, account),
	)
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}
	defer func() {
		if cerr := p.Deliverer.Close(); cerr != nil {
			logger.Warn("failed to close delivery session", logging.Err(cerr))
		}
		if err != nil {
			status = instrumentation.StatusError
			logger.Error("digest run failed", logging.Err(err))
		}
		duration := time.Since(start)
		p.Metrics.RecordRun(ctx, account, status, duration)
		instrumentation.EndSpan(span, err)
		logger.Info("digest run finished",
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration))
	}()

	if err := p.check(ctx); err != nil {
		if cerr := interrupted(ctx, "check delivery channel", err); cerr != nil {
			return cerr
		}
		if delivery.Unreachable(err) {
			status = instrumentation.StatusUnavailable
			logger.Error("delivery channel unreachable", logging.Err(err))
			return nil
		}
		return fmt.Errorf("check delivery channel: %w", err)
	}

	emails, err := p.fetch(ctx, logger)
	if err != nil {
		if cerr := interrupted(ctx, "fetch emails", err); cerr != nil {
			return cerr
		}
		if errors.Is(err, mailbox.ErrUnavailable) {
			status = instrumentation.StatusUnavailable
			logger.Error("mailbox unavailable", logging.Err(err))
			return p.sendPlaceholder(ctx, logger, report.MailboxUnavailable(p.Provider))
		}
		return fmt.Errorf("fetch emails: %w", err)
	}

	_, groupSpan := instrumentation.StartSpan(ctx, instrumentation.StageGroup,
		attribute.Int(instrumentation.SpanAttrCount, len(emails)))
	grouped := grouping.Group(emails, p.Categories)
	instrumentation.EndSpan(groupSpan, nil)
	logger.Info("grouped emails",
		slog.Int("fetched", len(emails)),
		slog.Int("ungrouped", len(grouped.Ungrouped)),
		slog.Int("high_priority", len(grouped.HighPriority)),
		slog.Int("grouped_categories", len(grouped.GroupedCounts)))

	compileCtx, compileSpan := instrumentation.StartSpan(ctx, instrumentation.StageCompile)
	rep, err := p.Compiler.Compile(compileCtx, account, grouped.Ungrouped, grouped.GroupedCounts, grouped.HighPriority)
	instrumentation.EndSpan(compileSpan, err)
	if err != nil {
		if cerr := interrupted(ctx, "compile report", err); cerr != nil {
			return cerr
		}
		if errors.Is(err, llm.ErrProvider) {
			status = instrumentation.StatusUnavailable
			logger.Error("text generation unavailable", logging.Err(err))
			return p.sendPlaceholder(ctx, logger, report.GenerationUnavailableLine)
		}
		return fmt.Errorf("compile report: %w", err)
	}

	if err := p.deliver(ctx, report.Render(rep)); err != nil {
		if cerr := interrupted(ctx, "deliver report", err); cerr != nil {
			return cerr
		}
		if delivery.Unreachable(err) {
			status = instrumentation.StatusUnavailable
			logger.Error("delivery channel became unreachable", logging.Err(err))
			return nil
		}
		return fmt.Errorf("deliver report: %w", err)
	}
	return nil
}

func (p *Pipeline) check(ctx context.Context) (err error) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.StageCheck,
		attribute.String(instrumentation.SpanAttrBackend, p.Backend))
	defer func() { instrumentation.EndSpan(span, err) }()
	return p.Deliverer.Check(ctx)
}

func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger) (emails []mailbox.Email, err error) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.StageFetch,
		attribute.String(instrumentation.SpanAttrProvider, p.Provider))
	start := time.Now()
	defer func() {
		status := instrumentation.StatusFor(err)
		if errors.Is(err, mailbox.ErrUnavailable) && ctx.Err() == nil {
			status = instrumentation.StatusUnavailable
		}
		p.Metrics.RecordMailboxFetch(ctx, p.Provider, status, len(emails), time.Since(start))
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrCount, len(emails)))
		instrumentation.EndSpan(span, err)
	}()

	emails, err = p.Mailbox.FetchRecent(ctx, p.MaxEmails)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched emails",
		logging.Provider(p.Provider),
		slog.Int("count", len(emails)),
		slog.Duration(logging.KeyDuration, time.Since(start)))
	return emails, nil
}

// deliver sends lines in order and stops at the first failure.
func (p *Pipeline) deliver(ctx context.Context, lines []string) (err error) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.StageDelivery,
		attribute.String(instrumentation.SpanAttrBackend, p.Backend),
		attribute.Int("delivery.lines", len(lines)))
	defer func() { instrumentation.EndSpan(span, err) }()

	for i, line := range lines {
		err := p.Deliverer.Send(ctx, line)
		p.Metrics.RecordDelivery(ctx, p.Backend, instrumentation.StatusFor(err))
		if err != nil {
			return fmt.Errorf("line %d of %d: %w", i+1, len(lines), err)
		}
	}
	return nil
}

// interrupted returns err annotated with the context error when ctx is done.
// A cancelled run is never reported as an outage of its collaborators.
func interrupted(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w (%w)", stage, ctxErr, err)
	}
	return nil
}

func (p *Pipeline) sendPlaceholder(ctx context.Context, logger *slog.Logger, line string) error {
	err := p.deliver(ctx, []string{line})
	if err == nil {
		logger.Info("reported failure to channel", slog.String("line", line))
		return nil
	}
	if delivery.Unreachable(err) {
		logger.Error("delivery channel unreachable", logging.Err(err))
		return nil
	}
	return fmt.Errorf("report failure to channel: %w", err)
}

func (p *Pipeline) newRunID() string {
	if p.NewRunID != nil {
		return p.NewRunID()
	}
	return uuid.NewString()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return logging.WithService(p.Logger, "pipeline")
}

// ObserveGenerations returns a report.GenerationObserver recording every
// generation call for model in m.
func ObserveGenerations(m *instrumentation.Metrics, model llm.Model) report.GenerationObserver {
	return func(ctx context.Context, task prompt.Task, err error, duration time.Duration) {
		m.RecordGeneration(ctx, task.String(), string(model), instrumentation.StatusFor(err), duration)
	}
}
