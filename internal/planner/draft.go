package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
)

// Draft is a generated test saved for editing before it is assigned.
type Draft struct {
	Student   string                 `yaml:"student"`
	Title     string                 `yaml:"title"`
	Questions []questiongen.Question `yaml:"questions"`
}

// SaveDraft writes d to path as YAML.
func SaveDraft(path string, d Draft) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// LoadDraft reads a YAML draft. Questions without an id are rejected
// since assigned tests reference them by id.
func LoadDraft(path string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, fmt.Errorf("read draft: %w", err)
	}
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("parse draft %s: %w", path, err)
	}
	for i, q := range d.Questions {
		if q.ID == "" {
			return Draft{}, fmt.Errorf("draft question %d has no id", i+1)
		}
	}
	return d, nil
}
