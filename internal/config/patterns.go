package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/redact"
)

// Patterns is the content of the optional patterns file.
//
//	groups:
//	  - name: School
//	    pattern: "@school\\.example\\.org"
//	    high_priority: true
//	redaction_rules:
//	  - name: Account Number
//	    pattern: "\\bACCT-\\d{8}\\b"
//	    placeholder: "<ACCOUNT_NUMBER>"
type Patterns struct {
	Groups         []grouping.Definition `yaml:"groups"`
	RedactionRules []redact.Rule         `yaml:"redaction_rules"`
}

func loadPatterns(path string) (Patterns, error) {
	if path == "" {
		return Patterns{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Patterns{}, fmt.Errorf("%w: failed to read patterns file: %w", ErrMisconfigured, err)
	}
	return ParsePatterns(data)
}

// ParsePatterns decodes a patterns document. Unknown fields are rejected.
func ParsePatterns(data []byte) (Patterns, error) {
	var p Patterns
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Patterns{}, fmt.Errorf("%w: invalid patterns file: %w", ErrMisconfigured, err)
	}
	for i, g := range p.Groups {
		if g.Name == "" || g.Pattern == "" {
			return Patterns{}, fmt.Errorf("%w: group %d needs a name and a pattern", ErrMisconfigured, i+1)
		}
	}
	return p, nil
}
