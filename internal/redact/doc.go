// Package redact replaces personal information in email text with fixed
// placeholders before the text is sent to a language model.
//
// A Redactor holds an ordered set of rules. Each rule is applied in turn to
// the output of the previous one, replacing every non-overlapping,
// case-insensitive match with the rule's placeholder. Placeholders are
// validated at construction so that no rule can match another rule's
// placeholder, which makes the result independent of how often redaction runs.
//
// The default rule set covers Social Security numbers, North American phone
// numbers and vehicle licence plates:
//
//	r, err := redact.New(redact.DefaultRules(""))
//	res := r.Redact("Call 123-456-7890")
//	// res.Text == "Call <PHONE_NUMBER>", res.Redacted == true
package redact
