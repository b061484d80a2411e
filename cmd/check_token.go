package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxdigest/internal/config"
	"github.com/teemow/inboxdigest/internal/google"
	"github.com/teemow/inboxdigest/internal/logging"
)

func newCheckTokenCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "check-token",
		Short: "Check that an account's Gmail refresh token still works",
		Long: `Exchange the configured Gmail refresh token of an account for a new access
token. The command fails when the grant was revoked or expired, which is the
usual reason for a report saying the mail service is not available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			config.LoadDotEnv()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if account == "" {
				account = string(a.cfg.Account)
			}
			if err := a.checkToken(ctx, account); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refresh token for %s is valid\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Email account to check. Can also use EMAIL_ACCOUNT env var.")

	return cmd
}

func (a *app) checkToken(ctx context.Context, raw string) error {
	account, err := config.ParseAccount(raw)
	if err != nil {
		return err
	}
	mc, err := a.cfg.Mailbox(account)
	if err != nil {
		return err
	}
	if mc.Provider != config.ProviderGmail {
		return fmt.Errorf("%w: account %s uses %s, not gmail", config.ErrInvalidInput, account, mc.Provider)
	}

	logger := logging.WithAccount(logging.WithOperation(a.logger, "check_token"), string(account))
	err = google.CheckRefreshToken(ctx, google.Config(mc.Gmail), mc.Gmail)
	switch {
	case err == nil:
		logger.Info("refresh token is valid")
		return nil
	case errors.Is(err, google.ErrInvalidGrant):
		logger.Warn("refresh token is invalid or revoked", logging.Err(err))
	default:
		logger.Error("failed to validate refresh token", logging.Err(err))
	}
	return err
}
