package questiongen

import "fmt"

// Validator checks a generated question before it is issued.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the question passes. The task the question
	// was generated for is passed for context.
	Validate(q *Question, task Task) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
