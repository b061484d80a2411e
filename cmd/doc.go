// Package cmd implements the command-line interface for inboxdigest.
//
// This package provides the following commands:
//   - report: Summarize the newest emails of an account and deliver the report
//   - lambda: Serve report invocations from the AWS Lambda runtime
//   - check-token: Verify an account's Gmail refresh token
//   - version: Display version information
//
// The report command is the default command when no subcommand is specified.
package cmd
