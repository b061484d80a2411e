package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxdigest/internal/config"
)

func newReportCmd() *cobra.Command {
	var req digestRequest

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recent emails and deliver the report",
		Long: `Fetch the newest messages of one account, group bulk senders, summarize the
rest and deliver the rendered report line by line.

Settings are read from the environment and an optional .env file in the
working directory or its parent. Flags override EMAIL_ACCOUNT, TARGET_MODEL
and MAX_EMAILS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(req)
		},
	}

	cmd.Flags().StringVar(&req.Account, "account", "", "Email account to report on: PRIMARY, NOREPLY or ALTERNATE. Can also use EMAIL_ACCOUNT env var.")
	cmd.Flags().StringVar(&req.Model, "model", "", "Model to summarize with: CLAUDE_HAIKU, CLAUDE_SONNET, NOVA_MICRO or DEEPSEEK. Can also use TARGET_MODEL env var.")
	cmd.Flags().IntVar(&req.MaxEmails, "max-emails", 0, "Number of recent emails to fetch (default 5). Can also use MAX_EMAILS env var.")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Print the report to stdout instead of delivering it")

	return cmd
}

func runReport(req digestRequest) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config.LoadDotEnv()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	return a.run(ctx, req)
}
