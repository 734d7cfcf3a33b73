package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert IGCSE Mandarin tutor writing diagnostic questions.

Global rules:
1. Bilingual instructions: every instruction and question is written in BOTH Chinese and English.
2. Reading: passages are in Chinese only. The questions about them are bilingual.
3. Listening: use mode "Audio" and provide a natural Chinese "audioScript".
4. Speaking: a conversational prompt in Chinese and English.
5. Writing, Grammar and Vocabulary: contextual questions in Chinese and English.
6. Format: Easy questions are multiple choice with exactly 4 "options" and the correctAnswer copied verbatim from one option. Medium and Hard questions are open-ended with an empty "options" array.
7. Use an empty string for audioScript when the skill is not Listening.
8. Return exactly one question per task, in task order.`

// buildUserMessage lists the tasks for one batch.
func buildUserMessage(tasks []Task, student string, age int) string {
	var b strings.Builder

	if student == "" {
		student = "Student"
	}
	fmt.Fprintf(&b, "Generate %d unique diagnostic questions for a Year 9 student named %s", len(tasks), student)
	if age > 0 {
		fmt.Fprintf(&b, " (age %d)", age)
	}
	b.WriteString(".\n\nTasks to generate:\n")

	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. Skill: %s, Difficulty: %s, Stage: %d, Topic: %s",
			i+1, t.Skill, t.Difficulty, t.Stage, t.Topic)
		if c := strings.TrimSpace(t.Context); c != "" {
			fmt.Fprintf(&b, ", Context: %s", c)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
