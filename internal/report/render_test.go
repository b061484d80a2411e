package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

func TestRender(t *testing.T) {
	const header = "# PRIMARY Email Report 2023-01-01 09:00"
	base := Report{Account: "PRIMARY", Timestamp: "2023-01-01 09:00"}

	withAll := base
	withAll.ActionableEmails = []ActionableEmail{
		{Email: mailbox.Email{Sender: "daycare@sprouts.edu"}, NextSteps: "Pajama day. NEXT STEPS: Pack pajamas."},
		{Email: mailbox.Email{Sender: "partner@home.org"}, NextSteps: "Dinner plans. NEXT STEPS: Reply."},
	}
	withAll.Summaries = []Summary{
		{Email: mailbox.Email{Sender: "shop@store.com"}, Body: "Order shipped."},
	}
	withAll.GroupedCounts = []grouping.GroupedCount{
		{Sender: "alerts@warhorn.net", Count: 3},
		{Sender: "notify@nextdoor.com", Count: 1},
	}

	onlyRegular := base
	onlyRegular.Summaries = []Summary{{Email: mailbox.Email{Sender: "a@b.com"}, Body: "Hello."}}

	onlyHigh := base
	onlyHigh.ActionableEmails = []ActionableEmail{{Email: mailbox.Email{Sender: "a@b.com"}, NextSteps: "Do it."}}

	onlyGrouped := base
	onlyGrouped.GroupedCounts = []grouping.GroupedCount{{Sender: "alerts@warhorn.net", Count: 1}}

	tests := []struct {
		name   string
		report Report
		want   []string
	}{
		{
			name:   "empty report",
			report: base,
			want:   []string{header, "*No emails to report.*"},
		},
		{
			name:   "all sections",
			report: withAll,
			want: []string{
				header,
				"1. (daycare@sprouts.edu) Pajama day. NEXT STEPS: Pack pajamas.",
				"2. (partner@home.org) Dinner plans. NEXT STEPS: Reply.",
				"1. (shop@store.com) Order shipped.",
				"### Grouped Emails",
				"- (alerts@warhorn.net) - message count: 3",
				"- (notify@nextdoor.com) - message count: 1",
			},
		},
		{
			name:   "only regular",
			report: onlyRegular,
			want: []string{
				header,
				"*No high priority emails to report.*",
				"1. (a@b.com) Hello.",
				"*No grouped emails to report.*",
			},
		},
		{
			name:   "only high priority",
			report: onlyHigh,
			want: []string{
				header,
				"1. (a@b.com) Do it.",
				"*No regular emails to report.*",
				"*No grouped emails to report.*",
			},
		},
		{
			name:   "only grouped",
			report: onlyGrouped,
			want: []string{
				header,
				"*No high priority emails to report.*",
				"*No regular emails to report.*",
				"### Grouped Emails",
				"- (alerts@warhorn.net) - message count: 1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.report))
		})
	}
}

func TestRender_ZeroCountsShowPlaceholder(t *testing.T) {
	r := Report{
		Account:       "ALTERNATE",
		Timestamp:     "2024-06-01 10:00",
		Summaries:     []Summary{{Email: mailbox.Email{Sender: "x"}, Body: "y"}},
		GroupedCounts: []grouping.GroupedCount{{Sender: "z", Count: 0}},
	}

	lines := Render(r)
	assert.Equal(t, NoGroupedLine, lines[len(lines)-1])
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "# PRIMARY Email Report 2023-01-01", Header(Report{Account: "PRIMARY", Timestamp: "2023-01-01"}))
}

func TestMailboxUnavailable(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{provider: "gmail", want: "Error: Gmail service not available."},
		{provider: "imap", want: "Error: IMAP service not available."},
		{provider: "IMAP", want: "Error: IMAP service not available."},
		{provider: "", want: "Error: Mail service not available."},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, MailboxUnavailable(tt.provider))
		})
	}
}
