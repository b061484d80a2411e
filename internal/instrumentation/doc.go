// Package instrumentation provides OpenTelemetry instrumentation for
// inboxdigest runs.
//
// A run is a short-lived job, so metrics are either exported periodically
// (OTLP, stdout) or collected into a private Prometheus registry that is
// pushed to a Pushgateway when the provider shuts down.
//
// # Metrics
//
//   - digest_runs_total / digest_run_duration_seconds: runs by account and status
//   - mailbox_fetch_total / mailbox_fetch_duration_seconds: fetches by provider and status
//   - emails_fetched_total: fetched emails by provider
//   - generations_total / generation_duration_seconds: generation calls by task, model and status
//   - deliveries_total: delivered report lines by backend and status
//
// # Tracing
//
// One span per pipeline stage (digest.run, digest.fetch, digest.compile, ...).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout, none (default: none)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - PUSHGATEWAY_URL / PUSHGATEWAY_JOB: Pushgateway target for the prometheus exporter
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordRun(ctx, "PRIMARY", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
