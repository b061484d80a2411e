package prompt

import (
	"strings"

	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/redact"
)

// Task selects an instruction set.
type Task int

const (
	// TaskSummary asks for a short summary of a regular email.
	TaskSummary Task = iota
	// TaskNextSteps asks for a summary plus one concrete next step.
	TaskNextSteps
)

// String returns the task name used in logs and metrics.
func (t Task) String() string {
	switch t {
	case TaskSummary:
		return "summary"
	case TaskNextSteps:
		return "next_steps"
	default:
		return "unknown"
	}
}

const outputGuidelines = `# Output Guidelines
- Keep it short and to the point.
- Write in the present tense.
- Write in the active voice.
- Use at most 100 words.
`

// SummaryInstructions is the system prompt for TaskSummary.
var SummaryInstructions = `You summarize emails for a busy reader. Each email arrives with its sender,
subject and the beginning of its body. Reply with a summary of the email.

# Example Input
` + Format(summaryExample, nil).Body + `
# Example Output
Your pizza order from Corner Slice is ready for pickup at 6:15 PM today.

` + outputGuidelines

// NextStepsInstructions is the system prompt for TaskNextSteps.
var NextStepsInstructions = `You summarize emails and decide what the reader should do about them. Each
email arrives with its sender, subject and the beginning of its body.

# Output Format
Start with a short summary of the email. Then write "NEXT STEPS:" followed by
the single most immediate action the reader should take.

## Typical Next Steps
The table lists common kinds of email and a fitting next step. It is a guide,
not a complete list; suggest something else when it fits better.

| Kind of email | Next step |
|---|---|
| Booking confirmation for a flight, stay or event | Add the details to the calendar |
| A shared folder or document | Add the requested files |
| Food order confirmation | Pick up the order |
| Calendar invitation | Accept or decline |
| A friend or relative asking for a favor | Do the favor |
| A direct question | Answer the question |
| A request for a signature | Sign the document |
| Daycare asking for supplies | Buy the supplies and drop them off |
| A school newsletter about past activities | Read the full email |

# Example Input
` + Format(nextStepsExample, nil).Body + `
# Example Output
Alex forwarded a pickup confirmation from Corner Slice. NEXT STEPS: Pick up the order at 6:15 PM at 12 Main St.

` + outputGuidelines + `- Do not explain your reasoning.
- Do not add anything besides the summary and the next step.
- The next step is one specific action.
`

// SystemInstructions returns the system prompt for task. When the prompt was
// redacted the redactor's placeholder instructions are appended.
func SystemInstructions(task Task, redacted bool, r *redact.Redactor) string {
	base := SummaryInstructions
	if task == TaskNextSteps {
		base = NextStepsInstructions
	}
	if !redacted || r == nil {
		return base
	}
	return strings.TrimRight(base, "\n") + "\n\n" + r.Instructions()
}

var summaryExample = mailbox.Email{
	Sender:      "Corner Slice",
	Subject:     "Your order is confirmed",
	Snippet:     "Pickup at 6:15 PM",
	BodyPreview: ptr("Order #4417 for pickup. 1 x Large Margherita. Ready at 6:15 PM today. Total $18.40."),
}

var nextStepsExample = mailbox.Email{
	Sender:      "Alex Doe (alex@example.com)",
	Subject:     "Fwd: Corner Slice order received",
	Snippet:     "",
	BodyPreview: ptr("Order #4417 received. Pickup at 6:15 PM, Corner Slice, 12 Main St. 1 x Large Margherita."),
}

func ptr(s string) *string { return &s }
