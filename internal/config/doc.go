// Package config loads the runtime configuration of inboxdigest.
//
// Values come from environment variables through viper, with an optional
// .env file for local runs (LoadDotEnv) and an optional YAML patterns file
// that adds grouping definitions and redaction rules. Per-account mailbox
// credentials are resolved lazily, so an invocation only needs the secrets
// of the account it reports on.
//
// Request selectors that cannot be resolved (ParseAccount, ParseModel) are
// reported as ErrInvalidInput so entry points can reject a request before
// any external call is made. Unusable deployment settings, including
// environment values for the same selectors, are reported as
// ErrMisconfigured.
package config
