package questiongen

import "context"

// Generator produces assessment questions using an LLM provider.
type Generator interface {
	// Generate produces questions for the given tasks in a single pass.
	// The student name personalises the prompt. Validators run before
	// returning; a failed call is never retried here.
	Generate(ctx context.Context, tasks []Task, student string) ([]Question, error)
}
