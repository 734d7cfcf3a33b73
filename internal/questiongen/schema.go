package questiongen

import "github.com/TIMOVIS/mandarin-exam/internal/llm"

// BatchSchema defines the JSON schema for bulk question generation.
var BatchSchema = &llm.Schema{
	Name:        "mandarin-questions",
	Description: "A batch of IGCSE Mandarin diagnostic questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionItem,
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

var questionItem = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"content": map[string]any{
			"type":        "string",
			"description": "The question text, instructions in both Chinese and English",
		},
		"audioScript": map[string]any{
			"type":        "string",
			"description": "Chinese script read aloud for Listening questions. Empty string otherwise.",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 options for Easy questions. Empty array for open-ended questions.",
		},
		"correctAnswer": map[string]any{
			"type":        "string",
			"description": "For multiple choice, the exact text of the correct option. Otherwise a model answer.",
		},
		"mode": map[string]any{
			"type": "string",
			"enum": []any{"Text", "Audio", "Image"},
		},
		"timeLimit": map[string]any{
			"type":        "integer",
			"minimum":     0,
			"description": "Seconds allowed to answer",
		},
		"skill": map[string]any{
			"type": "string",
			"enum": []any{"Listening", "Speaking", "Reading", "Writing", "Vocabulary", "Grammar"},
		},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"Easy", "Medium", "Hard"},
		},
		"stage": map[string]any{
			"type":    "integer",
			"minimum": 1,
			"maximum": 6,
		},
	},
	"required":             []any{"content", "audioScript", "options", "correctAnswer", "mode", "timeLimit", "skill", "difficulty", "stage"},
	"additionalProperties": false,
}
