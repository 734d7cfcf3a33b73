package questiongen

import (
	"strings"
	"testing"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"valid", Question{Content: "你好吗？ How are you?", CorrectAnswer: "我很好"}, false},
		{"empty content", Question{Content: "  ", CorrectAnswer: "x"}, true},
		{"empty answer", Question{Content: "q", CorrectAnswer: ""}, true},
		{"too long", Question{Content: strings.Repeat("字", maxContentRunes+1), CorrectAnswer: "x"}, true},
		{"negative limit", Question{Content: "q", CorrectAnswer: "x", TimeLimit: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.q, Task{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChoiceValidator(t *testing.T) {
	v := &ChoiceValidator{}
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"open-ended skipped", Question{CorrectAnswer: "anything"}, false},
		{"answer among options", Question{Options: []string{"猫", "狗", "鱼", "鸟"}, CorrectAnswer: "狗"}, false},
		{"answer missing", Question{Options: []string{"猫", "狗"}, CorrectAnswer: "马"}, true},
		{"answer differs in case", Question{Options: []string{"Apple", "Pear"}, CorrectAnswer: "apple"}, true},
		{"single distinct option", Question{Options: []string{"猫", "猫"}, CorrectAnswer: "猫"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.q, Task{})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestListeningValidator(t *testing.T) {
	v := &ListeningValidator{}
	if err := v.Validate(&Question{Skill: skill.Listening}, Task{}); err == nil {
		t.Error("expected error for listening question without script")
	}
	if err := v.Validate(&Question{Skill: skill.Listening, AudioScript: "你好"}, Task{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.Validate(&Question{Skill: skill.Reading}, Task{}); err != nil {
		t.Errorf("reading question should not need a script: %v", err)
	}
}
