package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/inboxdigest/internal/google"
	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/imapmail"
	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/redact"
	"github.com/teemow/inboxdigest/internal/report"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// DeliveryConfig selects and configures the delivery backend.
type DeliveryConfig struct {
	Backend          Backend
	DiscordToken     string
	DiscordChannelID string
	SignalUser       string
	SignalGroup      string
	SignalRecipient  string
}

// MailboxConfig holds the resolved settings of one account.
type MailboxConfig struct {
	Account      Account
	Provider     MailProvider
	EmailAddress string
	Gmail        google.Credentials
	IMAP         imapmail.Settings
}

// Config is the resolved process configuration.
type Config struct {
	Account        Account
	Model          llm.Model
	MaxEmails      int
	Location       *time.Location
	AWSRegion      string
	LLMRPS         float64
	Log            LogConfig
	Delivery       DeliveryConfig
	Groups         []grouping.Definition
	RedactionRules []redact.Rule

	v *viper.Viper
}

// Load reads the configuration from the environment.
// EMAIL_ACCOUNT may be empty; callers that need an account check it.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeyMaxEmails, DefaultMaxEmails)
	v.SetDefault(KeyReportTimezone, report.DefaultTimezone)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyDeliveryBackend, string(DefaultDeliveryBackend))
	v.SetDefault(KeyAWSRegion, llm.DefaultRegion)
	v.SetDefault(KeyLLMRPS, 0)

	cfg := &Config{
		AWSRegion: v.GetString(KeyAWSRegion),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		v: v,
	}

	if raw := v.GetString(KeyEmailAccount); raw != "" {
		account, err := ParseAccount(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q is not a known account", ErrMisconfigured, KeyEmailAccount, raw)
		}
		cfg.Account = account
	}

	model, err := llm.ParseModel(v.GetString(KeyTargetModel))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMisconfigured, KeyTargetModel, err)
	}
	cfg.Model = model

	cfg.MaxEmails = v.GetInt(KeyMaxEmails)
	if cfg.MaxEmails <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %q", ErrMisconfigured, KeyMaxEmails, v.GetString(KeyMaxEmails))
	}

	cfg.LLMRPS = v.GetFloat64(KeyLLMRPS)
	if cfg.LLMRPS < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrMisconfigured, KeyLLMRPS)
	}

	loc, err := time.LoadLocation(v.GetString(KeyReportTimezone))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMisconfigured, KeyReportTimezone, err)
	}
	cfg.Location = loc

	backend, err := parseBackend(v.GetString(KeyDeliveryBackend))
	if err != nil {
		return nil, err
	}
	cfg.Delivery = DeliveryConfig{
		Backend:          backend,
		DiscordToken:     v.GetString(KeyDiscordToken),
		DiscordChannelID: v.GetString(KeyDiscordChannel),
		SignalUser:       v.GetString(KeySignalUser),
		SignalGroup:      v.GetString(KeySignalGroup),
		SignalRecipient:  v.GetString(KeySignalRecipient),
	}

	patterns, err := loadPatterns(v.GetString(KeyPatternsFile))
	if err != nil {
		return nil, err
	}
	cfg.Groups = groupDefinitions(v, patterns)
	cfg.RedactionRules = append(redact.DefaultRules(v.GetString(KeyLicensePlate)), patterns.RedactionRules...)

	return cfg, nil
}

func groupDefinitions(v *viper.Viper, patterns Patterns) []grouping.Definition {
	defs := grouping.BuiltinDefinitions()
	if p := v.GetString(KeySpouseRegex); p != "" {
		defs = append(defs, grouping.Definition{Name: "Spouse", Pattern: p, HighPriority: true})
	}
	if p := v.GetString(KeyDaycareRegex); p != "" {
		defs = append(defs, grouping.Definition{Name: "Daycare", Pattern: p, HighPriority: true})
	}
	return append(defs, patterns.Groups...)
}

// Mailbox resolves the mailbox settings of account.
// Missing credentials are not checked here; the adapters report them as
// mailbox unavailability.
func (c *Config) Mailbox(account Account) (MailboxConfig, error) {
	provider, err := parseProvider(c.v.GetString(accountKey(account, suffixMailProvider)))
	if err != nil {
		return MailboxConfig{}, err
	}

	mc := MailboxConfig{
		Account:      account,
		Provider:     provider,
		EmailAddress: c.v.GetString(accountKey(account, suffixEmailAddress)),
	}
	switch provider {
	case ProviderIMAP:
		mc.IMAP = imapmail.Settings{
			Addr:     c.v.GetString(accountKey(account, suffixIMAPAddr)),
			Username: c.v.GetString(accountKey(account, suffixIMAPUsername)),
			Password: c.v.GetString(accountKey(account, suffixIMAPPassword)),
		}
	default:
		mc.Gmail = google.Credentials{
			AccessToken:  c.v.GetString(accountKey(account, suffixGmailToken)),
			RefreshToken: c.v.GetString(accountKey(account, suffixGmailRefreshToken)),
			ClientID:     c.v.GetString(accountKey(account, suffixGmailClientID)),
			ClientSecret: c.v.GetString(accountKey(account, suffixGmailClientSecret)),
		}
	}
	return mc, nil
}

// Profile returns the generation profile of model, reading its identifier
// from the model's environment key.
func (c *Config) Profile(model llm.Model) (llm.Profile, error) {
	p, err := llm.NewProfile(model, c.v.GetString(model.IDEnv()))
	if err != nil {
		return llm.Profile{}, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}
	return p, nil
}

// LoadDotEnv loads a .env file from the working directory or its parent.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}
	parent := filepath.Join("..", ".env")
	if _, err := os.Stat(parent); err == nil {
		_ = godotenv.Load(parent)
	}
}

// String summarizes the non-secret settings for logging.
func (c *Config) String() string {
	return fmt.Sprintf("account=%s model=%s max_emails=%d timezone=%s delivery=%s groups=%d redaction_rules=%d",
		c.Account, c.Model, c.MaxEmails, c.Location, c.Delivery.Backend, len(c.Groups), len(c.RedactionRules))
}
