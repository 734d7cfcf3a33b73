// Package grading scores open-ended answers with an LLM.
package grading

import (
	"context"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
)

// FailureFeedback is the feedback recorded when the evaluator cannot be
// reached or returns something unusable.
const FailureFeedback = "Evaluation failed due to a connection error."

// Request is one answer to grade.
type Request struct {
	QuestionContent string
	Answer          capture.Payload
	CanonicalAnswer string
}

// Result is the evaluator's verdict. Score is 0..100.
type Result struct {
	IsCorrect bool   `json:"isCorrect"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}

// FailureResult is returned for any evaluation failure.
func FailureResult() Result {
	return Result{IsCorrect: false, Score: 0, Feedback: FailureFeedback}
}

// Evaluator grades answers. Evaluate never fails: problems are reported
// as FailureResult.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) Result
}
