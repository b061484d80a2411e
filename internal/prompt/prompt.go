package prompt

import (
	"fmt"

	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/redact"
)

// MissingBody is embedded in place of an absent body so the model always sees
// a body section.
const MissingBody = "(none)"

// Formatted is a prompt body ready for the model.
type Formatted struct {
	Body     string
	Redacted bool
}

// Format renders email as a prompt. The body preview is passed through r
// when r is non-nil and a body is present; a nil r disables redaction.
func Format(email mailbox.Email, r *redact.Redactor) Formatted {
	body := MissingBody
	redacted := false
	if email.HasBody() {
		body = *email.BodyPreview
		if r != nil {
			res := r.Redact(body)
			body, redacted = res.Text, res.Redacted
		}
	}

	return Formatted{
		Body: fmt.Sprintf("Sender: <sender>%s</sender>\nSubject: <subject>%s - %s</subject>\nBody:\n<body>\n    %s\n</body>\n",
			email.Sender, email.Subject, email.Snippet, body),
		Redacted: redacted,
	}
}
