package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/teemow/inboxdigest/internal/config"
	"github.com/teemow/inboxdigest/internal/delivery"
	"github.com/teemow/inboxdigest/internal/discord"
	"github.com/teemow/inboxdigest/internal/gmail"
	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/imapmail"
	"github.com/teemow/inboxdigest/internal/instrumentation"
	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/logging"
	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/pipeline"
	"github.com/teemow/inboxdigest/internal/redact"
	"github.com/teemow/inboxdigest/internal/report"
	"github.com/teemow/inboxdigest/internal/signal"
)

// digestRequest selects what one run produces. Zero fields fall back to the
// configuration.
type digestRequest struct {
	Account   string
	Model     string
	MaxEmails int
	DryRun    bool
}

// app holds the process services of one invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	provider  *instrumentation.Provider
	stdout    io.Writer
}

// newApp loads the configuration and starts logging and instrumentation.
// Unusable settings are returned wrapped in config.ErrMisconfigured.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrMisconfigured, err)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	logger.Debug("configuration loaded",
		slog.String("config", cfg.String()),
		slog.Bool("instrumentation", provider.Enabled()))
	return &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: logCloser,
		provider:  provider,
		stdout:    os.Stdout,
	}, nil
}

// Close flushes telemetry and closes the log file.
func (a *app) Close(ctx context.Context) {
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
	if err := a.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func (a *app) metrics() *instrumentation.Metrics {
	if a.provider == nil {
		return nil
	}
	return a.provider.Metrics()
}

// run resolves req and executes one digest run.
func (a *app) run(ctx context.Context, req digestRequest) error {
	p, account, err := a.newPipeline(ctx, req)
	if err != nil {
		return err
	}
	return p.Run(ctx, string(account))
}

// newPipeline validates req against the configuration before any
// collaborator is created, so input errors never reach the network. Only
// request values yield config.ErrInvalidInput.
func (a *app) newPipeline(ctx context.Context, req digestRequest) (*pipeline.Pipeline, config.Account, error) {
	account, model, maxEmails, err := a.resolve(req)
	if err != nil {
		return nil, "", err
	}
	profile, err := a.cfg.Profile(model)
	if err != nil {
		return nil, "", err
	}
	mc, err := a.cfg.Mailbox(account)
	if err != nil {
		return nil, "", err
	}
	redactor, err := redact.New(a.cfg.RedactionRules)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", config.ErrMisconfigured, err)
	}
	categories, err := grouping.Compile(a.cfg.Groups)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", config.ErrMisconfigured, err)
	}

	mb, provider := a.newMailbox(ctx, mc)
	metrics := a.metrics()

	builder := report.NewBuilder(a.newGenerator(ctx, profile), redactor, profile, a.logger)
	builder.Observe = pipeline.ObserveGenerations(metrics, model)

	deliverer, backend, err := a.newDeliverer(req.DryRun)
	if err != nil {
		return nil, "", err
	}

	return &pipeline.Pipeline{
		Mailbox:    mb,
		Compiler:   report.NewCompiler(builder, a.cfg.Location),
		Categories: categories,
		Deliverer:  deliverer,
		MaxEmails:  maxEmails,
		Provider:   provider,
		Backend:    backend,
		Logger:     a.logger,
		Metrics:    metrics,
	}, account, nil
}

func (a *app) resolve(req digestRequest) (config.Account, llm.Model, int, error) {
	account := a.cfg.Account
	if req.Account != "" {
		parsed, err := config.ParseAccount(req.Account)
		if err != nil {
			return "", "", 0, err
		}
		account = parsed
	}
	if account == "" {
		return "", "", 0, fmt.Errorf("%w: no email account given, set --account or %s", config.ErrInvalidInput, config.KeyEmailAccount)
	}

	model := a.cfg.Model
	if req.Model != "" {
		parsed, err := config.ParseModel(req.Model)
		if err != nil {
			return "", "", 0, err
		}
		model = parsed
	}

	maxEmails := a.cfg.MaxEmails
	switch {
	case req.MaxEmails < 0:
		return "", "", 0, fmt.Errorf("%w: max emails must be positive, got %d", config.ErrInvalidInput, req.MaxEmails)
	case req.MaxEmails > 0:
		maxEmails = req.MaxEmails
	}
	return account, model, maxEmails, nil
}

// newMailbox returns the adapter of mc and its provider label. A mailbox that
// cannot be constructed still runs, reporting itself unavailable on fetch.
func (a *app) newMailbox(ctx context.Context, mc config.MailboxConfig) (mailbox.Mailbox, string) {
	var (
		mb  mailbox.Mailbox
		err error
	)
	switch mc.Provider {
	case config.ProviderIMAP:
		mb, err = imapmail.NewClient(mc.IMAP, a.logger)
	default:
		mb, err = gmail.NewClient(ctx, mc.Gmail, gmail.DefaultUserID, a.logger)
	}
	if err != nil {
		a.logger.Warn("mailbox client unavailable", logging.Account(string(mc.Account)), logging.Err(err))
		return failingMailbox{err: err}, string(mc.Provider)
	}
	a.logger.Debug("mailbox configured",
		logging.Account(string(mc.Account)),
		logging.Provider(string(mc.Provider)),
		logging.Domain(mc.EmailAddress))
	return mb, string(mc.Provider)
}

// newGenerator returns the Bedrock client for profile, paced by LLM_RPS.
func (a *app) newGenerator(ctx context.Context, profile llm.Profile) llm.Generator {
	opts := []llm.Option{llm.WithLogger(a.logger)}
	if a.cfg.LLMRPS > 0 {
		opts = append(opts, llm.WithLimiter(rate.NewLimiter(rate.Limit(a.cfg.LLMRPS), 1)))
	}
	gen, err := llm.NewBedrockClient(ctx, a.cfg.AWSRegion, profile.ID, opts...)
	if err != nil {
		return failingGenerator{err: err}
	}
	return gen
}

// newDeliverer returns the configured delivery backend and its label.
// Dry runs print to stdout.
func (a *app) newDeliverer(dryRun bool) (delivery.Deliverer, string, error) {
	if dryRun {
		return delivery.NewConsole(a.stdout), "console", nil
	}

	dc := a.cfg.Delivery
	switch dc.Backend {
	case config.BackendSignal:
		c, err := signal.NewClient(dc.SignalUser, signal.Target{Group: dc.SignalGroup, Recipient: dc.SignalRecipient})
		if err != nil {
			return nil, "", fmt.Errorf("%w: failed to create signal client: %w", config.ErrMisconfigured, err)
		}
		return c, string(dc.Backend), nil
	default:
		a.logger.Debug("creating delivery session",
			logging.Backend(string(dc.Backend)),
			logging.Token(dc.DiscordToken))
		c, err := discord.NewClient(dc.DiscordToken, dc.DiscordChannelID, a.logger)
		if err != nil {
			return nil, "", fmt.Errorf("%w: failed to create discord client: %w", config.ErrMisconfigured, err)
		}
		return c, string(dc.Backend), nil
	}
}

// failingMailbox stands in for an adapter that could not be constructed.
type failingMailbox struct {
	err error
}

func (m failingMailbox) FetchRecent(context.Context, int) ([]mailbox.Email, error) {
	return nil, m.err
}

// failingGenerator stands in for a generation client that could not be
// constructed.
type failingGenerator struct {
	err error
}

func (g failingGenerator) Generate(context.Context, llm.Request) (string, error) {
	return "", g.err
}
