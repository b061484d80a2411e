package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus   = "status"
	attrAccount  = "account"
	attrProvider = "provider"
	attrTask     = "task"
	attrModel    = "model"
	attrBackend  = "backend"
)

var durationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

// Metrics provides methods for recording observability metrics.
// The zero value records nothing.
type Metrics struct {
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram

	mailboxFetchTotal    metric.Int64Counter
	mailboxFetchDuration metric.Float64Histogram
	emailsFetchedTotal   metric.Int64Counter

	generationsTotal   metric.Int64Counter
	generationDuration metric.Float64Histogram

	deliveriesTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.runsTotal, err = meter.Int64Counter(
		"digest_runs_total",
		metric.WithDescription("Total number of digest runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"digest_run_duration_seconds",
		metric.WithDescription("Digest run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_run_duration_seconds histogram: %w", err)
	}

	m.mailboxFetchTotal, err = meter.Int64Counter(
		"mailbox_fetch_total",
		metric.WithDescription("Total number of mailbox fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailbox_fetch_total counter: %w", err)
	}

	m.mailboxFetchDuration, err = meter.Float64Histogram(
		"mailbox_fetch_duration_seconds",
		metric.WithDescription("Mailbox fetch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailbox_fetch_duration_seconds histogram: %w", err)
	}

	m.emailsFetchedTotal, err = meter.Int64Counter(
		"emails_fetched_total",
		metric.WithDescription("Total number of emails fetched"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create emails_fetched_total counter: %w", err)
	}

	m.generationsTotal, err = meter.Int64Counter(
		"generations_total",
		metric.WithDescription("Total number of text generation calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generations_total counter: %w", err)
	}

	m.generationDuration, err = meter.Float64Histogram(
		"generation_duration_seconds",
		metric.WithDescription("Text generation call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_duration_seconds histogram: %w", err)
	}

	m.deliveriesTotal, err = meter.Int64Counter(
		"deliveries_total",
		metric.WithDescription("Total number of delivered report lines"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create deliveries_total counter: %w", err)
	}

	return m, nil
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(ctx context.Context, account, status string, duration time.Duration) {
	if m == nil || m.runsTotal == nil || m.runDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrAccount, account),
		attribute.String(attrStatus, status),
	)
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMailboxFetch records one mailbox fetch and the number of emails it returned.
func (m *Metrics) RecordMailboxFetch(ctx context.Context, provider, status string, count int, duration time.Duration) {
	if m == nil || m.mailboxFetchTotal == nil || m.mailboxFetchDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrProvider, provider),
		attribute.String(attrStatus, status),
	)
	m.mailboxFetchTotal.Add(ctx, 1, attrs)
	m.mailboxFetchDuration.Record(ctx, duration.Seconds(), attrs)
	if count > 0 && m.emailsFetchedTotal != nil {
		m.emailsFetchedTotal.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrProvider, provider)))
	}
}

// RecordGeneration records one text generation call.
//
// Parameters:
//   - task: "summary" or "next_steps"
//   - model: the model selector, not the provider identifier
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordGeneration(ctx context.Context, task, model, status string, duration time.Duration) {
	if m == nil || m.generationsTotal == nil || m.generationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTask, task),
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	)
	m.generationsTotal.Add(ctx, 1, attrs)
	m.generationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDelivery records one message sent (or not) to the delivery backend.
func (m *Metrics) RecordDelivery(ctx context.Context, backend, status string) {
	if m == nil || m.deliveriesTotal == nil {
		return
	}

	m.deliveriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrBackend, backend),
		attribute.String(attrStatus, status),
	))
}
