package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxdigest/internal/config"
	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

var appEnvKeys = []string{
	"EMAIL_ACCOUNT", "TARGET_MODEL", "MAX_EMAILS", "PATTERNS_FILE", "LLM_RPS",
	"REPORT_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"DELIVERY_BACKEND", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID",
	"SIGNAL_USER", "SIGNAL_GROUP", "SIGNAL_RECIPIENT",
	"HAIKU_MODEL_ID", "SONNET_MODEL_ID",
	"PRIMARY_MAIL_PROVIDER", "PRIMARY_GMAIL_TOKEN", "PRIMARY_GMAIL_REFRESH_TOKEN",
	"PRIMARY_GMAIL_CLIENT_ID", "PRIMARY_GMAIL_CLIENT_SECRET",
	"ALTERNATE_MAIL_PROVIDER", "ALTERNATE_IMAP_ADDR", "ALTERNATE_IMAP_USERNAME", "ALTERNATE_IMAP_PASSWORD",
}

// newTestApp builds an app from env alone. Metrics are disabled and dry runs
// write to the returned buffer.
func newTestApp(t *testing.T, env map[string]string) (*app, *bytes.Buffer) {
	t.Helper()
	setAppEnv(t, env)

	cfg, err := config.Load()
	require.NoError(t, err)

	var out bytes.Buffer
	return &app{
		cfg:       cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		logCloser: io.NopCloser(nil),
		stdout:    &out,
	}, &out
}

// setAppEnv replaces the settings the app reads with env.
func setAppEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range appEnvKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		req       digestRequest
		account   config.Account
		model     llm.Model
		maxEmails int
		wantErr   bool
	}{
		{
			name:      "environment defaults",
			env:       map[string]string{"EMAIL_ACCOUNT": "PRIMARY"},
			account:   config.AccountPrimary,
			model:     llm.DefaultModel,
			maxEmails: config.DefaultMaxEmails,
		},
		{
			name:      "request overrides environment",
			env:       map[string]string{"EMAIL_ACCOUNT": "PRIMARY", "MAX_EMAILS": "3"},
			req:       digestRequest{Account: "alternate", Model: "CLAUDE_SONNET", MaxEmails: 9},
			account:   config.AccountAlternate,
			model:     llm.ModelClaudeSonnet,
			maxEmails: 9,
		},
		{
			name:    "no account anywhere",
			wantErr: true,
		},
		{
			name:    "unknown account",
			req:     digestRequest{Account: "WORK"},
			wantErr: true,
		},
		{
			name:    "unknown model",
			req:     digestRequest{Account: "PRIMARY", Model: "GPT"},
			wantErr: true,
		},
		{
			name:    "negative max emails",
			req:     digestRequest{Account: "PRIMARY", MaxEmails: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, tt.env)

			account, model, maxEmails, err := a.resolve(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, config.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.account, account)
			assert.Equal(t, tt.model, model)
			assert.Equal(t, tt.maxEmails, maxEmails)
		})
	}
}

func TestNewPipeline_MissingModelID(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"EMAIL_ACCOUNT": "PRIMARY"})

	_, _, err := a.newPipeline(context.Background(), digestRequest{DryRun: true})
	assert.ErrorIs(t, err, config.ErrMisconfigured)
	assert.NotErrorIs(t, err, config.ErrInvalidInput)
}

func TestNewPipeline_DryRun(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{
		"HAIKU_MODEL_ID":          "anthropic.claude-3-haiku",
		"ALTERNATE_MAIL_PROVIDER": "imap",
		"ALTERNATE_IMAP_ADDR":     "imap.example.com:993",
		"ALTERNATE_IMAP_USERNAME": "reader",
		"ALTERNATE_IMAP_PASSWORD": "secret",
	})

	p, account, err := a.newPipeline(context.Background(), digestRequest{Account: "ALTERNATE", MaxEmails: 2, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, config.AccountAlternate, account)
	assert.Equal(t, "imap", p.Provider)
	assert.Equal(t, "console", p.Backend)
	assert.Equal(t, 2, p.MaxEmails)
	assert.NotEmpty(t, p.Categories)
}

func TestNewMailbox_MissingCredentials(t *testing.T) {
	a, _ := newTestApp(t, nil)
	mc, err := a.cfg.Mailbox(config.AccountPrimary)
	require.NoError(t, err)

	mb, provider := a.newMailbox(context.Background(), mc)
	assert.Equal(t, "gmail", provider)

	_, err = mb.FetchRecent(context.Background(), 5)
	assert.ErrorIs(t, err, mailbox.ErrUnavailable)
}

func TestNewDeliverer(t *testing.T) {
	t.Run("dry run prints", func(t *testing.T) {
		a, out := newTestApp(t, nil)

		d, backend, err := a.newDeliverer(true)
		require.NoError(t, err)
		assert.Equal(t, "console", backend)
		require.NoError(t, d.Send(context.Background(), "# PRIMARY Email Report"))
		assert.Contains(t, out.String(), "# PRIMARY Email Report")
	})

	t.Run("discord without token", func(t *testing.T) {
		a, _ := newTestApp(t, map[string]string{"DISCORD_CHANNEL_ID": "123"})

		_, _, err := a.newDeliverer(false)
		assert.ErrorIs(t, err, config.ErrMisconfigured)
		assert.NotErrorIs(t, err, config.ErrInvalidInput)
	})

	t.Run("discord", func(t *testing.T) {
		a, _ := newTestApp(t, map[string]string{"DISCORD_BOT_TOKEN": "token", "DISCORD_CHANNEL_ID": "123"})

		d, backend, err := a.newDeliverer(false)
		require.NoError(t, err)
		assert.Equal(t, "discord", backend)
		assert.NoError(t, d.Close())
	})
}

func TestFailingGenerator(t *testing.T) {
	cause := &llm.ProviderError{ModelID: "m", Err: assert.AnError}
	_, err := failingGenerator{err: cause}.Generate(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, llm.ErrProvider)
}

func TestNewDeliverer_SignalMisconfigured(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{"DELIVERY_BACKEND": "signal", "SIGNAL_USER": "15551234567"})

	_, _, err := a.newDeliverer(false)
	assert.ErrorIs(t, err, config.ErrMisconfigured)
	assert.NotErrorIs(t, err, config.ErrInvalidInput)
}
