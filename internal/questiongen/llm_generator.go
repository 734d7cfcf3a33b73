package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// ErrNoTasks is returned when Generate is called with an empty task list.
var ErrNoTasks = errors.New("no tasks to generate")

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type batchOutput struct {
	Questions []questionOutput `json:"questions"`
}

// questionOutput is the raw LLM item before mapping and validation.
type questionOutput struct {
	Content       string   `json:"content"`
	AudioScript   string   `json:"audioScript"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Mode          string   `json:"mode"`
	TimeLimit     int      `json:"timeLimit"`
	Skill         string   `json:"skill"`
	Difficulty    string   `json:"difficulty"`
	Stage         int      `json:"stage"`
}

// Generate produces one question per task in a single LLM call.
func (g *LLMGenerator) Generate(ctx context.Context, tasks []Task, student string) ([]Question, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(tasks, student, g.config.StudentAge)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Questions) > len(tasks) {
		raw.Questions = raw.Questions[:len(tasks)]
	}

	var (
		out      []Question
		firstErr *ValidationError
	)
	for i, item := range raw.Questions {
		task := tasks[i]
		q := mapQuestion(item, task)
		if verr := g.validate(&q, task); verr != nil {
			if firstErr == nil {
				firstErr = verr
			}
			continue
		}
		out = append(out, q)
	}

	if len(out) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("no valid questions in batch: %w", firstErr)
		}
		return nil, fmt.Errorf("no valid questions in batch: model returned %d items", len(raw.Questions))
	}
	return out, nil
}

func (g *LLMGenerator) validate(q *Question, task Task) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, task); verr != nil {
			return verr
		}
	}
	return nil
}

// mapQuestion applies the output defaults: fresh id, 60s time limit when
// missing, nil options when empty, Text mode when unknown. The task fills
// in anything the model left out.
func mapQuestion(item questionOutput, task Task) Question {
	q := Question{
		ID:              uuid.NewString(),
		LearningPointID: task.LearningPointID,
		Skill:           task.Skill,
		Stage:           task.Stage,
		Mode:            skill.ParseMode(item.Mode),
		Content:         item.Content,
		AudioScript:     item.AudioScript,
		CorrectAnswer:   item.CorrectAnswer,
		Difficulty:      task.Difficulty,
		TimeLimit:       item.TimeLimit,
	}
	if sk, err := skill.ParseSkill(item.Skill); err == nil && task.Skill == "" {
		q.Skill = sk
	}
	if item.Difficulty != "" && task.Difficulty == "" {
		q.Difficulty = skill.ParseDifficulty(item.Difficulty)
	}
	if q.Stage == 0 {
		q.Stage = item.Stage
	}
	if q.TimeLimit <= 0 {
		q.TimeLimit = DefaultTimeLimit
	}
	if len(item.Options) > 0 {
		q.Options = item.Options
	}
	return q
}
