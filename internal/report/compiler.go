package report

import (
	"context"
	"time"

	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

// TimestampLayout is the format of Report.Timestamp.
const TimestampLayout = "2006-01-02 15:04"

// DefaultTimezone is the zone the report audience lives in.
const DefaultTimezone = "America/New_York"

// Compiler assembles reports.
type Compiler struct {
	Builder  *Builder
	Location *time.Location
	Now      func() time.Time
}

// NewCompiler returns a Compiler stamping reports in loc with the wall clock.
func NewCompiler(b *Builder, loc *time.Location) *Compiler {
	return &Compiler{Builder: b, Location: loc, Now: time.Now}
}

// Compile summarizes emails, produces next steps for highPriority and stamps
// the report with the current time.
func (c *Compiler) Compile(ctx context.Context, account string, emails []mailbox.Email, grouped []grouping.GroupedCount, highPriority []mailbox.Email) (Report, error) {
	summaries, err := c.Builder.BuildSummaries(ctx, emails)
	if err != nil {
		return Report{}, err
	}
	actionable, err := c.Builder.BuildActionable(ctx, highPriority)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Account:          account,
		Timestamp:        c.timestamp(),
		Summaries:        summaries,
		ActionableEmails: actionable,
		GroupedCounts:    grouped,
	}, nil
}

func (c *Compiler) timestamp() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc).Format(TimestampLayout)
}
