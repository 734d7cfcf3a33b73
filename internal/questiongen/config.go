package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run on every generated question, in order. A question
	// failing any of them is dropped from the batch.
	Validators []Validator

	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// StudentAge is mentioned in the prompt when set.
	StudentAge int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ChoiceValidator{},
			&ListeningValidator{},
		},
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}
