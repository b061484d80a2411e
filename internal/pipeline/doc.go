// Package pipeline runs one digest: it checks the delivery channel, fetches
// recent emails, groups them, compiles a report and posts the rendered lines.
//
// Collaborator failures are classified at the point of use. An unavailable
// mailbox or text generation service is reported to the channel with a single
// placeholder line. An unreachable channel is only logged. Anything else is
// returned to the caller. The delivery session is closed on every path.
package pipeline
