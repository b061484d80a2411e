package mailbox

import (
	"context"
	"errors"
	"unicode/utf8"
)

// Header defaults used when a message lacks the corresponding field.
const (
	DefaultSubject = "No Subject"
	DefaultSender  = "No Sender"
	DefaultDate    = "No Date"
	DefaultSnippet = "No snippet available."
)

// PreviewLength is the maximum number of characters kept from a message body.
const PreviewLength = 100

// ErrUnavailable is returned when the mailbox cannot be reached or
// authenticated against. The pipeline reports it to the channel instead of
// failing the run.
var ErrUnavailable = errors.New("mailbox unavailable")

// Email is one fetched message. BodyPreview is nil when no text body was found.
type Email struct {
	ID          string
	Subject     string
	Sender      string
	Date        string
	Snippet     string
	BodyPreview *string
}

// HasBody reports whether the email carries a body preview.
func (e Email) HasBody() bool {
	return e.BodyPreview != nil
}

// Mailbox fetches the most recent messages of one account, newest first.
type Mailbox interface {
	FetchRecent(ctx context.Context, maxCount int) ([]Email, error)
}

// Preview truncates body to PreviewLength characters and returns it as a
// BodyPreview value. An empty body yields nil.
func Preview(body string) *string {
	if body == "" {
		return nil
	}
	if utf8.RuneCountInString(body) > PreviewLength {
		body = string([]rune(body)[:PreviewLength])
	}
	return &body
}

// OrDefault returns value, or def when value is empty.
func OrDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
