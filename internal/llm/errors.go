package llm

import (
	"errors"
	"fmt"
)

// ErrProvider matches every *ProviderError.
var ErrProvider = errors.New("text generation provider error")

// ProviderError is a failed generation call.
type ProviderError struct {
	// ModelID is the Bedrock identifier that was invoked.
	ModelID string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("generate with %s: %v", e.ModelID, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProvider) hold for every ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
