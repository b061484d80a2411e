package report

import (
	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

// Summary is the model's summary of a regular email.
type Summary struct {
	Email mailbox.Email
	Body  string
}

// ActionableEmail is the model's summary and next step for a high-priority email.
type ActionableEmail struct {
	Email     mailbox.Email
	NextSteps string
}

// Report is the compiled digest of one run.
type Report struct {
	Account          string
	Timestamp        string
	Summaries        []Summary
	ActionableEmails []ActionableEmail
	GroupedCounts    []grouping.GroupedCount
}

// IsEmpty reports whether the report has nothing to show.
func (r Report) IsEmpty() bool {
	return len(r.Summaries) == 0 && len(r.ActionableEmails) == 0 && len(r.GroupedCounts) == 0
}
