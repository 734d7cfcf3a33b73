package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func testTasks() []Task {
	return []Task{
		{Topic: "Personal Information", Skill: skill.Vocabulary, Difficulty: skill.Easy, Stage: 1, LearningPointID: "lp-1-5"},
		{Topic: "Daily Routine", Skill: skill.Listening, Difficulty: skill.Medium, Stage: 2, LearningPointID: "lp-2-1"},
	}
}

func batchJSON() json.RawMessage {
	return json.RawMessage(`{
		"questions": [
			{
				"content": "“苹果”是什么意思？ What does 苹果 mean?",
				"audioScript": "",
				"options": ["apple", "banana", "pear", "grape"],
				"correctAnswer": "apple",
				"mode": "Text",
				"timeLimit": 45,
				"skill": "Vocabulary",
				"difficulty": "Easy",
				"stage": 1
			},
			{
				"content": "听录音，回答问题。Listen and answer: what time does he get up?",
				"audioScript": "我每天早上七点起床。",
				"options": [],
				"correctAnswer": "七点 / seven o'clock",
				"mode": "Audio",
				"timeLimit": 0,
				"skill": "Listening",
				"difficulty": "Medium",
				"stage": 2
			}
		]
	}`)
}

func TestGenerate_MapsBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON()})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), testTasks(), "Mei")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}

	mc := qs[0]
	if !mc.IsMultipleChoice() {
		t.Error("expected first question to be multiple choice")
	}
	if mc.TimeLimit != 45 {
		t.Errorf("expected time limit 45, got %d", mc.TimeLimit)
	}
	if mc.LearningPointID != "lp-1-5" {
		t.Errorf("expected learning point lp-1-5, got %q", mc.LearningPointID)
	}
	if mc.ID == "" {
		t.Error("expected generated id")
	}

	open := qs[1]
	if open.Options != nil {
		t.Errorf("expected nil options for open-ended, got %v", open.Options)
	}
	if open.TimeLimit != DefaultTimeLimit {
		t.Errorf("expected default time limit, got %d", open.TimeLimit)
	}
	if open.Mode != skill.ModeAudio {
		t.Errorf("expected audio mode, got %q", open.Mode)
	}
	if open.Skill != skill.Listening {
		t.Errorf("expected listening skill, got %q", open.Skill)
	}
	if qs[0].ID == qs[1].ID {
		t.Error("expected distinct ids")
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON()})
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), testTasks(), "Mei"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.Calls))
	}
	req := mock.Calls[0]
	if req.Schema != BatchSchema {
		t.Error("expected batch schema")
	}
	user := req.Messages[0].Content
	for _, want := range []string{"Mei", "1. Skill: Vocabulary, Difficulty: Easy, Stage: 1, Topic: Personal Information", "2. Skill: Listening"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q:\n%s", want, user)
		}
	}
}

func TestGenerate_UnknownModeFallsBackToText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[
		{"content":"写一段话。Write a paragraph.","audioScript":"","options":[],"correctAnswer":"…","mode":"Video","timeLimit":120,"skill":"Writing","difficulty":"Hard","stage":3}
	]}`)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), []Task{{Topic: "Hobbies", Skill: skill.Writing, Difficulty: skill.Hard, Stage: 3}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qs[0].Mode != skill.ModeText {
		t.Errorf("expected Text mode, got %q", qs[0].Mode)
	}
}

func TestGenerate_DropsInvalidQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[
		{"content":"选一个。Pick one.","audioScript":"","options":["a","b","c","d"],"correctAnswer":"e","mode":"Text","timeLimit":30,"skill":"Vocabulary","difficulty":"Easy","stage":1},
		{"content":"听。Listen.","audioScript":"","options":[],"correctAnswer":"x","mode":"Audio","timeLimit":30,"skill":"Listening","difficulty":"Medium","stage":2}
	]}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testTasks(), "Mei")
	if err == nil {
		t.Fatal("expected error when every question is invalid")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Validator != "choice" {
		t.Errorf("expected choice validator to fail first, got %q", verr.Validator)
	}
}

func TestGenerate_TruncatesExtraQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON()})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), testTasks()[:1], "Mei")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 {
		t.Errorf("expected 1 question, got %d", len(qs))
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testTasks(), "Mei")
	var unavailable *llm.ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected provider error to propagate, got %v", err)
	}
}

func TestGenerate_MalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), testTasks(), "Mei"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGenerate_NoTasks(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	if _, err := gen.Generate(context.Background(), nil, "Mei"); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestQuestion_LimitAndClone(t *testing.T) {
	q := Question{Options: []string{"a", "b"}}
	if q.Limit() != DefaultTimeLimit {
		t.Errorf("expected default limit, got %d", q.Limit())
	}
	c := q.Clone()
	c.Options[0] = "z"
	if q.Options[0] != "a" {
		t.Error("clone shares options with the original")
	}
}
