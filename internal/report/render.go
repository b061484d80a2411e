package report

import (
	"fmt"
	"strings"
)

// Fixed lines of the rendered report.
const (
	NoEmailsLine              = "*No emails to report.*"
	NoHighPriorityLine        = "*No high priority emails to report.*"
	NoRegularLine             = "*No regular emails to report.*"
	GroupedHeaderLine         = "### Grouped Emails"
	NoGroupedLine             = "*No grouped emails to report.*"
	GenerationUnavailableLine = "Error: Text generation service not available."
)

// MailboxUnavailable returns the placeholder sent when the mailbox behind the
// provider label cannot be read.
func MailboxUnavailable(provider string) string {
	name := "Mail"
	switch strings.ToLower(provider) {
	case "gmail":
		name = "Gmail"
	case "imap":
		name = "IMAP"
	}
	return fmt.Sprintf("Error: %s service not available.", name)
}

// Header returns the first line of a rendered report.
func Header(r Report) string {
	return fmt.Sprintf("# %s Email Report %s", r.Account, r.Timestamp)
}

// Render returns the report as chat messages in display order.
func Render(r Report) []string {
	lines := []string{Header(r)}
	if r.IsEmpty() {
		return append(lines, NoEmailsLine)
	}

	if len(r.ActionableEmails) == 0 {
		lines = append(lines, NoHighPriorityLine)
	}
	for i, a := range r.ActionableEmails {
		lines = append(lines, fmt.Sprintf("%d. (%s) %s", i+1, a.Email.Sender, a.NextSteps))
	}

	if len(r.Summaries) == 0 {
		lines = append(lines, NoRegularLine)
	}
	for i, s := range r.Summaries {
		lines = append(lines, fmt.Sprintf("%d. (%s) %s", i+1, s.Email.Sender, s.Body))
	}

	if !hasGroupedCounts(r) {
		return append(lines, NoGroupedLine)
	}
	lines = append(lines, GroupedHeaderLine)
	for _, g := range r.GroupedCounts {
		lines = append(lines, fmt.Sprintf("- (%s) - message count: %d", g.Sender, g.Count))
	}
	return lines
}

func hasGroupedCounts(r Report) bool {
	for _, g := range r.GroupedCounts {
		if g.Count > 0 {
			return true
		}
	}
	return false
}
