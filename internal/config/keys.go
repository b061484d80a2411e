package config

// Environment keys.
const (
	KeyEmailAccount    = "EMAIL_ACCOUNT"
	KeyTargetModel     = "TARGET_MODEL"
	KeyMaxEmails       = "MAX_EMAILS"
	KeySpouseRegex     = "SPOUSE_REGEX"
	KeyDaycareRegex    = "DAYCARE_REGEX"
	KeyLicensePlate    = "LICENSE_PLATE_REGEX"
	KeyReportTimezone  = "REPORT_TIMEZONE"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFormat       = "LOG_FORMAT"
	KeyLogFile         = "LOG_FILE"
	KeyDeliveryBackend = "DELIVERY_BACKEND"
	KeyPatternsFile    = "PATTERNS_FILE"
	KeyLLMRPS          = "LLM_RPS"
	KeyAWSRegion       = "AWS_REGION"
	KeyDiscordToken    = "DISCORD_BOT_TOKEN"
	KeyDiscordChannel  = "DISCORD_CHANNEL_ID"
	KeySignalUser      = "SIGNAL_USER"
	KeySignalGroup     = "SIGNAL_GROUP"
	KeySignalRecipient = "SIGNAL_RECIPIENT"
)

// Per-account key suffixes, prefixed with the account name and "_".
const (
	suffixMailProvider      = "MAIL_PROVIDER"
	suffixEmailAddress      = "EMAIL_ADDRESS"
	suffixGmailToken        = "GMAIL_TOKEN"
	suffixGmailRefreshToken = "GMAIL_REFRESH_TOKEN"
	suffixGmailClientID     = "GMAIL_CLIENT_ID"
	suffixGmailClientSecret = "GMAIL_CLIENT_SECRET"
	suffixIMAPAddr          = "IMAP_ADDR"
	suffixIMAPUsername      = "IMAP_USERNAME"
	suffixIMAPPassword      = "IMAP_PASSWORD"
)

// Defaults.
const (
	DefaultMaxEmails       = 5
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultDeliveryBackend = BackendDiscord
)

func accountKey(a Account, suffix string) string {
	return string(a) + "_" + suffix
}
