package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func evaluationSchema() *Schema {
	return &Schema{
		Name:        "test-evaluation",
		Description: "One graded answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"isCorrect": map[string]any{"type": "boolean"},
				"score":     map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
				"feedback":  map[string]any{"type": "string"},
				"band":      map[string]any{"type": "string", "enum": []any{"HSK1", "HSK2", "HSK3"}},
			},
			"required": []any{"isCorrect", "score", "feedback"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"isCorrect":true,"score":85,"feedback":"很好","band":"HSK2"}`, false},
		{"optional omitted", `{"isCorrect":false,"score":20,"feedback":"tone 3 on 我"}`, false},
		{"missing feedback", `{"isCorrect":true,"score":90}`, true},
		{"score as string", `{"isCorrect":true,"score":"ninety","feedback":"ok"}`, true},
		{"score above range", `{"isCorrect":true,"score":140,"feedback":"ok"}`, true},
		{"unknown band", `{"isCorrect":true,"score":70,"feedback":"ok","band":"HSK9"}`, true},
		{"malformed", `{isCorrect: yes}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(evaluationSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_QuestionBatch(t *testing.T) {
	schema := &Schema{
		Name:        "test-question-batch",
		Description: "Generated questions",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text":    map[string]any{"type": "string"},
							"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []any{"text"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}

	valid := json.RawMessage(`{"questions":[{"text":"你叫什么名字？","options":["我叫小明","我八岁"]}]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"questions":[{"options":[1,2]}]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for question without text")
	}
}

func TestDecodeStructured_StripsCodeFence(t *testing.T) {
	want := `{"isCorrect":true,"score":80,"feedback":"好"}`
	for _, raw := range []string{
		want,
		"  " + want + "\n",
		"```json\n" + want + "\n```",
		"```\n" + want + "\n```",
		"```json" + want + "```",
	} {
		got, err := decodeStructured(evaluationSchema(), "m", json.RawMessage(raw))
		if err != nil {
			t.Fatalf("decodeStructured(%q): %v", raw, err)
		}
		if string(got) != want {
			t.Errorf("decodeStructured(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestDecodeStructured_EmptyResponse(t *testing.T) {
	for _, raw := range []string{"", "   ", "```json\n```"} {
		_, err := decodeStructured(evaluationSchema(), "gemini-2.5-flash", json.RawMessage(raw))
		var empty *ErrEmptyResponse
		if !errors.As(err, &empty) {
			t.Fatalf("decodeStructured(%q): expected ErrEmptyResponse, got %T (%v)", raw, err, err)
		}
		if empty.Model != "gemini-2.5-flash" {
			t.Errorf("Model = %q", empty.Model)
		}
	}
}
