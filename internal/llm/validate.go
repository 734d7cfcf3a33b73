package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache holds compiled schemas by name. Names are unique per schema
// (question-batch, answer-evaluation).
var schemaCache sync.Map // map[string]*jsonschema.Schema

// decodeStructured cleans a model's structured output and validates it
// against schema. Models without native JSON mode sometimes wrap the object
// in a markdown code fence; the fence is removed before validation.
func decodeStructured(schema *Schema, model string, raw json.RawMessage) (json.RawMessage, error) {
	content := stripCodeFence(raw)
	if len(content) == 0 {
		return nil, &ErrEmptyResponse{Model: model}
	}
	if err := validateResponse(schema, content); err != nil {
		return nil, err
	}
	return content, nil
}

func stripCodeFence(raw json.RawMessage) json.RawMessage {
	s := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(s, []byte("```")) {
		return json.RawMessage(s)
	}
	s = s[3:]
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // language tag
	} else {
		s = bytes.TrimPrefix(s, []byte("json"))
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return json.RawMessage(bytes.TrimSpace(s))
}

// validateResponse checks raw against schema. A nil schema accepts anything.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("%s: %w", schema.Name, err),
		}
	}
	return nil
}

func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
