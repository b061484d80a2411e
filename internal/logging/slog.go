package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys shared by every digest stage.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyAccount   = "account"
	KeyRunID     = "run_id"
	KeyProvider  = "provider"
	KeyBackend   = "backend"
	KeyModelID   = "model_id"
	KeySender    = "sender_hash"
	KeyDomain    = "email_domain"
	KeyToken     = "token"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Run outcomes, spelled like the instrumentation status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger tagged with the entry point in use.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithRunID returns a logger tagged with one digest run.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String(KeyRunID, runID))
}

// WithService returns a logger tagged with the component that logs.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithAccount returns a logger tagged with the account label, such as PRIMARY.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// Attribute constructors for the shared keys.
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }
func Account(account string) slog.Attr { return slog.String(KeyAccount, account) }
func Provider(provider string) slog.Attr { return slog.String(KeyProvider, provider) }
func Backend(backend string) slog.Attr { return slog.String(KeyBackend, backend) }
func ModelID(id string) slog.Attr { return slog.String(KeyModelID, id) }
func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

// Err returns the error attribute. A nil error yields an empty group, which
// slog drops, so Err(maybeNil) is safe.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Sender returns a stable hash of a sender address. Entries about the same
// sender correlate without the address reaching the log.
func Sender(address string) slog.Attr {
	return slog.String(KeySender, hashAddress(address))
}

func hashAddress(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(address))
	return "sender:" + hex.EncodeToString(sum[:8])
}

// Domain returns the domain of a mailbox address, or an empty value when
// address has no single "@".
func Domain(address string) slog.Attr {
	local, domain, ok := strings.Cut(address, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		domain = ""
	}
	return slog.String(KeyDomain, strings.ToLower(domain))
}

// Token returns a length marker for a credential. No part of the token is
// logged.
func Token(token string) slog.Attr {
	if token == "" {
		return slog.String(KeyToken, "<empty>")
	}
	return slog.String(KeyToken, fmt.Sprintf("[%d chars]", len(token)))
}
