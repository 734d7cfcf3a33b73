package questiongen

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

const maxContentRunes = 2000

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ Task) *ValidationError {
	if strings.TrimSpace(q.Content) == "" {
		return &ValidationError{Validator: v.Name(), Message: "content is empty", Retryable: true}
	}
	if utf8.RuneCountInString(q.Content) > maxContentRunes {
		return &ValidationError{Validator: v.Name(), Message: "content exceeds 2000 characters", Retryable: true}
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return &ValidationError{Validator: v.Name(), Message: "correctAnswer is empty", Retryable: true}
	}
	if q.TimeLimit < 0 {
		return &ValidationError{Validator: v.Name(), Message: "timeLimit must not be negative", Retryable: true}
	}
	return nil
}

// ChoiceValidator checks multiple-choice questions: at least two distinct
// options, and the answer must be one of them verbatim.
type ChoiceValidator struct{}

func (v *ChoiceValidator) Name() string { return "choice" }

func (v *ChoiceValidator) Validate(q *Question, _ Task) *ValidationError {
	if !q.IsMultipleChoice() {
		return nil
	}
	distinct := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		distinct[o] = struct{}{}
	}
	if len(distinct) < 2 {
		return &ValidationError{Validator: v.Name(), Message: "multiple choice needs at least 2 distinct options", Retryable: true}
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return &ValidationError{Validator: v.Name(), Message: "correctAnswer is not one of the options", Retryable: true}
	}
	return nil
}

// ListeningValidator requires an audio script for listening questions.
type ListeningValidator struct{}

func (v *ListeningValidator) Name() string { return "listening" }

func (v *ListeningValidator) Validate(q *Question, _ Task) *ValidationError {
	if q.Skill != skill.Listening {
		return nil
	}
	if strings.TrimSpace(q.AudioScript) == "" {
		return &ValidationError{Validator: v.Name(), Message: "listening question has no audioScript", Retryable: true}
	}
	return nil
}
