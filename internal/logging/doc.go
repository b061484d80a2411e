// Package logging provides structured logging utilities for inboxdigest.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from configuration (text or JSON, optional rotating file)
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Build the process logger once:
//
//	logger, closer, err := logging.New(logging.Options{Level: "info", Format: "json"})
//	defer closer.Close()
//
// Create a logger with standard attributes:
//
//	logger = logging.WithAccount(logger, "PRIMARY")
//	logger.Info("report delivered",
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("summarized email",
//	    logging.Sender(sender))
//
// # Security Considerations
//
//   - Sender addresses are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging
