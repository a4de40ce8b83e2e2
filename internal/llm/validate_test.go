package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// quizSchema is a cut-down assessment shape: a phase label and a list of
// typed questions.
func quizSchema() *Schema {
	return &Schema{
		Name:        "test-quiz",
		Description: "A small quiz",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"phase": map[string]any{"type": "string"},
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":         map[string]any{"type": "integer", "minimum": 1},
							"type":       map[string]any{"type": "string", "enum": []any{"Pilihan Ganda", "Isian Singkat", "Uraian"}},
							"needsImage": map[string]any{"type": "boolean"},
							"options":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []any{"id", "type", "needsImage"},
					},
				},
			},
			"required": []any{"phase", "questions"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		wantPath string
	}{
		{
			name: "valid",
			raw:  `{"phase":"Fase A","questions":[{"id":1,"type":"Pilihan Ganda","needsImage":true,"options":["apel","jeruk","mangga"]}]}`,
		},
		{
			name: "optional options omitted",
			raw:  `{"phase":"Fase A","questions":[{"id":1,"type":"Uraian","needsImage":false}]}`,
		},
		{
			name:    "missing top-level field",
			raw:     `{"questions":[]}`,
			wantErr: true,
		},
		{
			name:     "unknown question type",
			raw:      `{"phase":"Fase A","questions":[{"id":1,"type":"Uraian","needsImage":false},{"id":2,"type":"Benar Salah","needsImage":false}]}`,
			wantErr:  true,
			wantPath: "/questions/1/type",
		},
		{
			name:     "wrong field type",
			raw:      `{"phase":"Fase A","questions":[{"id":"satu","type":"Uraian","needsImage":false}]}`,
			wantErr:  true,
			wantPath: "/questions/0/id",
		},
		{
			name:     "option not a string",
			raw:      `{"phase":"Fase A","questions":[{"id":1,"type":"Pilihan Ganda","needsImage":false,"options":["a",2]}]}`,
			wantErr:  true,
			wantPath: "/questions/0/options/1",
		},
		{
			name:    "malformed JSON",
			raw:     `{not json}`,
			wantErr: true,
		},
		{
			name:    "empty response",
			raw:     ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(quizSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if tt.wantPath != "" && invErr.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", invErr.Path, tt.wantPath)
			}
			if string(invErr.Content) != tt.raw {
				t.Errorf("content not carried on the error")
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	if err := ValidateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestCheckOutput(t *testing.T) {
	valid := json.RawMessage(`{"phase":"Fase A","questions":[]}`)
	req := Request{Schema: quizSchema()}

	if err := checkOutput(req, valid, StopEnd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := checkOutput(req, json.RawMessage(`{"phase":"Fa`), StopMaxTokens)
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %v", err)
	}

	err = checkOutput(req, valid, StopRefused)
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse for a refusal, got: %v", err)
	}

	if err := checkOutput(Request{}, json.RawMessage(`not json`), StopEnd); err != nil {
		t.Fatalf("no schema means no validation, got: %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ErrRateLimit{Err: errors.New("429")}, "rate_limited"},
		{&ErrMaxTokensExceeded{}, "truncated"},
		{&ErrInvalidResponse{Err: errors.New("bad")}, "invalid_response"},
		{&ErrProviderUnavailable{}, "unavailable"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
