package grouping

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/teemow/inboxdigest/internal/mailbox"
)

// ErrInvalidPattern is returned by Compile when a definition cannot be used.
var ErrInvalidPattern = errors.New("invalid grouping pattern")

// Definition declares one category.
type Definition struct {
	Name         string `yaml:"name"`
	Pattern      string `yaml:"pattern"`
	HighPriority bool   `yaml:"high_priority"`
}

// BuiltinDefinitions returns the fixed low-priority categories.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{Name: "Warhorn", Pattern: "warhorn"},
		{Name: "Nextdoor", Pattern: "nextdoor"},
	}
}

// Category is a compiled Definition.
type Category struct {
	Definition
	re *regexp.Regexp
}

// Matches reports whether sender contains a match for the category pattern.
func (c Category) Matches(sender string) bool {
	return c.re.MatchString(sender)
}

// Compile compiles definitions case-insensitively, preserving order.
func Compile(defs []Definition) ([]Category, error) {
	out := make([]Category, 0, len(defs))
	for _, d := range defs {
		if d.Name == "" || d.Pattern == "" {
			return nil, fmt.Errorf("%w: name and pattern are required (got %+v)", ErrInvalidPattern, d)
		}
		re, err := regexp.Compile("(?i)" + d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, d.Name, err)
		}
		out = append(out, Category{Definition: d, re: re})
	}
	return out, nil
}

// GroupedCount is the aggregate for one low-priority category.
type GroupedCount struct {
	Sender string
	Count  int
}

// Result partitions the input of Group.
type Result struct {
	GroupedCounts []GroupedCount
	Ungrouped     []mailbox.Email
	HighPriority  []mailbox.Email
}

// Total returns the number of emails the result accounts for.
func (r Result) Total() int {
	n := len(r.Ungrouped) + len(r.HighPriority)
	for _, g := range r.GroupedCounts {
		n += g.Count
	}
	return n
}

type tally struct {
	sender string
	count  int
}

// Group assigns each email to the first category whose pattern matches its
// sender. Counts are local to the call.
func Group(emails []mailbox.Email, categories []Category) Result {
	tallies := make([]tally, len(categories))
	var res Result

	for _, email := range emails {
		matched := false
		for i, c := range categories {
			if !c.Matches(email.Sender) {
				continue
			}
			matched = true
			tallies[i].count++
			if tallies[i].sender == "" {
				tallies[i].sender = email.Sender
			}
			if c.HighPriority {
				res.HighPriority = append(res.HighPriority, email)
			}
			break
		}
		if !matched {
			res.Ungrouped = append(res.Ungrouped, email)
		}
	}

	for i, c := range categories {
		if c.HighPriority || tallies[i].count == 0 {
			continue
		}
		sender := tallies[i].sender
		if sender == "" {
			sender = c.Name
		}
		res.GroupedCounts = append(res.GroupedCounts, GroupedCount{Sender: sender, Count: tallies[i].count})
	}

	return res
}
