package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Model selects a supported model.
type Model string

const (
	ModelClaudeHaiku  Model = "CLAUDE_HAIKU"
	ModelClaudeSonnet Model = "CLAUDE_SONNET"
	ModelNovaMicro    Model = "NOVA_MICRO"
	ModelDeepSeek     Model = "DEEPSEEK"
)

// DefaultModel is used when no model is selected.
const DefaultModel = ModelClaudeHaiku

// ErrUnknownModel is returned by ParseModel for unsupported selectors.
var ErrUnknownModel = errors.New("unknown model")

// Models lists the supported models in a stable order.
func Models() []Model {
	return []Model{ModelClaudeHaiku, ModelClaudeSonnet, ModelNovaMicro, ModelDeepSeek}
}

// ParseModel resolves a selector. Matching ignores case and surrounding
// whitespace; an empty selector yields DefaultModel.
func ParseModel(s string) (Model, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultModel, nil
	}
	for _, m := range Models() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// IDEnv returns the environment variable holding the Bedrock identifier.
func (m Model) IDEnv() string {
	switch m {
	case ModelClaudeHaiku:
		return "HAIKU_MODEL_ID"
	case ModelClaudeSonnet:
		return "SONNET_MODEL_ID"
	case ModelNovaMicro:
		return "NOVA_INFERENCE_PROFILE"
	case ModelDeepSeek:
		return "DEEPSEEK_INFERENCE_PROFILE"
	default:
		return ""
	}
}

// Profile binds a model to its identifier and sampling parameters.
type Profile struct {
	Model       Model
	ID          string
	Temperature float32
	MaxTokens   int32
}

// NewProfile returns the profile for m with the given Bedrock identifier.
func NewProfile(m Model, id string) (Profile, error) {
	if id == "" {
		return Profile{}, fmt.Errorf("model %s: %s is not set", m, m.IDEnv())
	}
	p := Profile{Model: m, ID: id}
	switch m {
	case ModelClaudeHaiku, ModelClaudeSonnet:
		p.Temperature, p.MaxTokens = 1.0, 500
	case ModelNovaMicro:
		p.Temperature, p.MaxTokens = 0.4, 1000
	case ModelDeepSeek:
		p.Temperature, p.MaxTokens = 0.7, 700
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownModel, m)
	}
	return p, nil
}

// Request is one generation call.
type Request struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int32
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
