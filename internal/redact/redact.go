package redact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Placeholders used by the default rules.
const (
	PlaceholderSSN          = "<SSN>"
	PlaceholderPhone        = "<PHONE_NUMBER>"
	PlaceholderLicensePlate = "<LICENSE_PLATE>"
)

// Default patterns. DefaultLicensePlatePattern can be overridden through
// configuration since plate formats vary by region.
const (
	DefaultSSNPattern          = `\b\d{3}-?\d{2}-?\d{4}\b`
	DefaultPhonePattern        = `(?:\(\d{3}\)\s?|\b\d{3}[-.\s]?)\d{3}[-.\s]?\d{4}\b`
	DefaultLicensePlatePattern = `\b[A-Z]{3}-?\d{4}\b`
)

var (
	// ErrInvalidInput is returned by RedactValue for anything but a string.
	ErrInvalidInput = errors.New("redaction input must be a string")

	// ErrInvalidRule is returned by New for rules that cannot be compiled or
	// whose placeholder would be matched by a rule.
	ErrInvalidRule = errors.New("invalid redaction rule")
)

// Rule describes one category of personal information.
type Rule struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Placeholder string `yaml:"placeholder"`
}

// Result is the outcome of redacting one text.
type Result struct {
	Text     string
	Redacted bool
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Redactor applies an ordered rule set. It is immutable and safe for
// concurrent use.
type Redactor struct {
	rules []compiledRule
}

// DefaultRules returns the built-in rule set. An empty licensePlatePattern
// selects DefaultLicensePlatePattern.
func DefaultRules(licensePlatePattern string) []Rule {
	if licensePlatePattern == "" {
		licensePlatePattern = DefaultLicensePlatePattern
	}
	return []Rule{
		{Name: "Social Security Number", Pattern: DefaultSSNPattern, Placeholder: PlaceholderSSN},
		{Name: "Phone Number", Pattern: DefaultPhonePattern, Placeholder: PlaceholderPhone},
		{Name: "Vehicle License Plate", Pattern: licensePlatePattern, Placeholder: PlaceholderLicensePlate},
	}
}

// New compiles rules in the given order.
func New(rules []Rule) (*Redactor, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Name == "" || rule.Pattern == "" || rule.Placeholder == "" {
			return nil, fmt.Errorf("%w: name, pattern and placeholder are required (got %+v)", ErrInvalidRule, rule)
		}
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, rule.Name, err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("%w: %s matches the empty string", ErrInvalidRule, rule.Name)
		}
		compiled = append(compiled, compiledRule{Rule: rule, re: re})
	}

	for _, a := range compiled {
		for _, b := range compiled {
			if sample, ok := touchesPlaceholder(b.re, a.Placeholder, compiled); ok {
				return nil, fmt.Errorf("%w: placeholder %s of %q is matched by rule %q in %q",
					ErrInvalidRule, a.Placeholder, a.Name, b.Name, sample)
			}
		}
	}

	return &Redactor{rules: compiled}, nil
}

// surroundings are text a placeholder commonly sits next to after redaction.
var surroundings = [][2]string{
	{"", ""},
	{"", " 0"}, {"0 ", ""},
	{"", "0"}, {"0", ""},
	{"", "-1234"}, {"1234-", ""},
	{"call ", " now"},
}

// touchesPlaceholder reports whether re matches any part of placeholder when
// it stands alone, next to digits or words, or beside another placeholder of
// rules. It returns the text that matched. Contexts beyond these samples are
// not checked.
func touchesPlaceholder(re *regexp.Regexp, placeholder string, rules []compiledRule) (string, bool) {
	contexts := surroundings
	for _, r := range rules {
		contexts = append(contexts, [2]string{r.Placeholder + " ", ""}, [2]string{"", " " + r.Placeholder})
	}
	for _, c := range contexts {
		text := c[0] + placeholder + c[1]
		start, end := len(c[0]), len(c[0])+len(placeholder)
		for _, m := range re.FindAllStringIndex(text, -1) {
			if m[0] < end && m[1] > start {
				return text, true
			}
		}
	}
	return "", false
}

// Redact replaces every match of every rule in text.
func (r *Redactor) Redact(text string) Result {
	if text == "" {
		return Result{}
	}

	redacted := false
	for _, rule := range r.rules {
		if !rule.re.MatchString(text) {
			continue
		}
		text = rule.re.ReplaceAllLiteralString(text, rule.Placeholder)
		redacted = true
	}
	return Result{Text: text, Redacted: redacted}
}

// RedactValue is Redact for untyped input such as decoded JSON.
func (r *Redactor) RedactValue(v any) (Result, error) {
	s, ok := v.(string)
	if !ok {
		return Result{}, fmt.Errorf("%w: got %T", ErrInvalidInput, v)
	}
	return r.Redact(s), nil
}

// Rules returns a copy of the configured rules in application order.
func (r *Redactor) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.Rule
	}
	return out
}

// Instructions returns the system-prompt block that tells the model what the
// placeholders mean. It is appended only when a prompt was actually redacted.
func (r *Redactor) Instructions() string {
	var b strings.Builder
	b.WriteString("## Redacted personal information\n\n")
	b.WriteString("Some details in this email were replaced with placeholders before it reached you.\n")
	b.WriteString("Each placeholder stands for one kind of personal information:\n")
	for _, rule := range r.rules {
		fmt.Fprintf(&b, "- %s: %s\n", rule.Name, rule.Placeholder)
	}
	b.WriteString("\nNever repeat a placeholder in your answer and do not mention that anything was redacted.\n")
	return b.String()
}
