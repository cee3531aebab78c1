package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// testSchema is a small learner profile object used by the provider tests.
func testSchema() *Schema {
	return &Schema{
		Name:        "test-learner",
		Description: "A learner profile",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"age":   map[string]any{"type": "integer", "minimum": 0},
				"level": map[string]any{"type": "string", "enum": []any{"Beginner", "Intermediate", "Advanced"}},
			},
			"required": []any{"name", "age"},
		},
	}
}

func quizSchema() *Schema {
	return &Schema{
		Name: "test-quiz",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"options": map[string]any{
								"type":     "array",
								"items":    map[string]any{"type": "string"},
								"minItems": 2,
							},
							"correct_answer": map[string]any{"type": "string"},
						},
						"required": []any{"question", "options", "correct_answer"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Ada","age":36,"level":"Advanced"}`, false},
		{"optional omitted", `{"name":"Linus","age":21}`, false},
		{"missing required", `{"name":"Grace"}`, true},
		{"wrong type", `{"name":"Alan","age":"forty"}`, true},
		{"enum violation", `{"name":"Barbara","age":30,"level":"Expert"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidate_NestedQuiz(t *testing.T) {
	var valid any
	json.Unmarshal([]byte(`{"questions":[{"question":"Q?","options":["a","b"],"correct_answer":"a"}]}`), &valid)
	if err := Validate(quizSchema(), valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var tooFewOptions any
	json.Unmarshal([]byte(`{"questions":[{"question":"Q?","options":["a"],"correct_answer":"a"}]}`), &tooFewOptions)
	if err := Validate(quizSchema(), tooFewOptions); err == nil {
		t.Fatal("expected error for a single option")
	}
}

func TestValidate_CachesCompiledSchema(t *testing.T) {
	s := quizSchema()
	if _, err := compiledSchema(s); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := schemaCache.Load(s.Name); !ok {
		t.Fatal("expected compiled schema to be cached")
	}
}
