package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/metrics"
)

// EvaluationSchema is the structured output for one graded answer.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Grade of a student's Mandarin answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type": "boolean",
			},
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall score for correctness, grammar and fluency",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of feedback for the student, in English with Chinese examples",
			},
		},
		"required":             []any{"isCorrect", "score", "feedback"},
		"additionalProperties": false,
	},
}

const systemPrompt = "You are an expert IGCSE Mandarin examiner. Grade the student's response fairly and briefly."

// LLMEvaluator implements Evaluator with an LLM provider.
type LLMEvaluator struct {
	provider  llm.Provider
	log       *zap.Logger
	maxTokens int
}

// New creates an LLMEvaluator.
func New(provider llm.Provider, log *zap.Logger) *LLMEvaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMEvaluator{provider: provider, log: log, maxTokens: 1024}
}

// Evaluate grades req. Media answers travel as attachments.
func (e *LLMEvaluator) Evaluate(ctx context.Context, req Request) Result {
	msg, err := buildMessage(req)
	if err != nil {
		return e.fail(err)
	}

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeEvaluate), llm.Request{
		System:    systemPrompt,
		Messages:  []llm.Message{msg},
		Schema:    EvaluationSchema,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return e.fail(err)
	}

	var res Result
	if err := json.Unmarshal(resp.Content, &res); err != nil {
		return e.fail(fmt.Errorf("decode evaluation: %w", err))
	}
	res.Score = min(max(res.Score, 0), 100)
	return res
}

func (e *LLMEvaluator) fail(err error) Result {
	metrics.EvaluationFailures.Inc()
	e.log.Warn("answer evaluation failed", zap.Error(err))
	return FailureResult()
}

// BuildPrompt renders the evaluation prompt. Text answers are inlined,
// media answers are only announced.
func BuildPrompt(question, canonical string, answer capture.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Correct/Ideal Answer: %s\n", canonical)
	if t, ok := answer.(capture.Text); ok {
		b.WriteString("Student Response Type: Text\n")
		fmt.Fprintf(&b, "Student Answer: %s\n", t.Value)
	} else {
		b.WriteString("Student Response Type: Media\n")
	}
	b.WriteString("\nEvaluate this Mandarin response for correctness, grammar, and fluency.\n")
	b.WriteString(`Return JSON: { "isCorrect": boolean, "score": number, "feedback": "string" }`)
	return b.String()
}

func buildMessage(req Request) (llm.Message, error) {
	msg := llm.Message{
		Role:    llm.RoleUser,
		Content: BuildPrompt(req.QuestionContent, req.CanonicalAnswer, req.Answer),
	}
	if m, ok := req.Answer.(capture.Media); ok {
		raw, err := m.Bytes()
		if err != nil {
			return llm.Message{}, fmt.Errorf("decode media answer: %w", err)
		}
		msg.Attachments = []llm.Attachment{{MIMEType: m.MIMEType, Data: raw}}
	}
	return msg, nil
}
