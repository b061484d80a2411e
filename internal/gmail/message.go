package gmail

import (
	"encoding/base64"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxdigest/internal/mailbox"
)

func toEmail(msg *gmail.Message) mailbox.Email {
	var subject, sender, date string
	if msg.Payload != nil {
		subject = HeaderValue(msg.Payload.Headers, "Subject")
		sender = HeaderValue(msg.Payload.Headers, "From")
		date = HeaderValue(msg.Payload.Headers, "Date")
	}

	return mailbox.Email{
		ID:          msg.Id,
		Subject:     mailbox.OrDefault(subject, mailbox.DefaultSubject),
		Sender:      mailbox.OrDefault(sender, mailbox.DefaultSender),
		Date:        mailbox.OrDefault(date, mailbox.DefaultDate),
		Snippet:     mailbox.OrDefault(msg.Snippet, mailbox.DefaultSnippet),
		BodyPreview: mailbox.Preview(bodyText(msg.Payload)),
	}
}

// HeaderValue returns the first header named name, compared case-insensitively.
func HeaderValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// bodyText returns the decoded text of the first text/plain or text/html part
// that carries data. Messages without parts fall back to the payload body.
func bodyText(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) == 0 {
		if payload.Body == nil {
			return ""
		}
		return decodeBody(payload.Body.Data)
	}

	var data string
	walkParts(payload, func(part *gmail.MessagePart) bool {
		if part.MimeType != "text/plain" && part.MimeType != "text/html" {
			return false
		}
		if part.Body == nil || part.Body.Data == "" {
			return false
		}
		data = part.Body.Data
		return true
	})
	return decodeBody(data)
}

// walkParts visits the parts below root depth first until fn returns true.
func walkParts(root *gmail.MessagePart, fn func(*gmail.MessagePart) bool) bool {
	for _, part := range root.Parts {
		if part == nil {
			continue
		}
		if fn(part) || walkParts(part, fn) {
			return true
		}
	}
	return false
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail sometimes omits padding
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
