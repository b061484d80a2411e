package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/inboxdigest/internal/llm"
)

var (
	// ErrInvalidInput marks request values that cannot be resolved, such as
	// an unknown account or model selector. Entry points map it to a client
	// error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMisconfigured marks deployment settings that cannot be used. It is
	// never a client error.
	ErrMisconfigured = errors.New("misconfigured")
)

// Account selects one set of mailbox credentials.
type Account string

// Known accounts.
const (
	AccountPrimary   Account = "PRIMARY"
	AccountNoReply   Account = "NOREPLY"
	AccountAlternate Account = "ALTERNATE"
)

// Accounts returns every known account.
func Accounts() []Account {
	return []Account{AccountPrimary, AccountNoReply, AccountAlternate}
}

// ParseAccount resolves an account name, ignoring case and surrounding space.
func ParseAccount(s string) (Account, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range Accounts() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown email account %q", ErrInvalidInput, s)
}

// ParseModel resolves a model selector. An empty value selects
// llm.DefaultModel.
func ParseModel(s string) (llm.Model, error) {
	m, err := llm.ParseModel(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return m, nil
}

// MailProvider selects the mailbox adapter of an account.
type MailProvider string

// Known mail providers.
const (
	ProviderGmail MailProvider = "gmail"
	ProviderIMAP  MailProvider = "imap"
)

func parseProvider(s string) (MailProvider, error) {
	switch MailProvider(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderGmail:
		return ProviderGmail, nil
	case ProviderIMAP:
		return ProviderIMAP, nil
	default:
		return "", fmt.Errorf("%w: unknown mail provider %q", ErrMisconfigured, s)
	}
}

// Backend selects the delivery channel.
type Backend string

// Known delivery backends.
const (
	BackendDiscord Backend = "discord"
	BackendSignal  Backend = "signal"
)

func parseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendDiscord:
		return BackendDiscord, nil
	case BackendSignal:
		return BackendSignal, nil
	default:
		return "", fmt.Errorf("%w: unknown delivery backend %q", ErrMisconfigured, s)
	}
}
