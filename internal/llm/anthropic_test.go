package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// newTestAnthropicProvider builds the provider through its constructor
// against handler and returns a counter of HTTP requests received.
func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) (*AnthropicProvider, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p, &hits
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":   "msg_test",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": stopReason,
		"usage": map[string]any{
			"input_tokens":  50,
			"output_tokens": 30,
		},
	}
}

func anthropicError(status int, kind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": message},
		})
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	p, hits := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"phase":"Fase A","cpReference":"-","questions":[]}`, "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a teacher's assistant.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate a question."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Fatalf("usage not mapped: %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Fatalf("expected stop reason %q, got %q", StopEnd, resp.StopReason)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one HTTP call, got %d", hits.Load())
	}
}

func TestAnthropicProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
	}{
		{
			name:    "rate limit",
			handler: anthropicError(http.StatusTooManyRequests, "rate_limit_error", "Rate limit exceeded"),
			check:   func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) },
		},
		{
			name:    "server error",
			handler: anthropicError(http.StatusInternalServerError, "api_error", "Internal server error"),
			check:   func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
		{
			name:    "overloaded",
			handler: anthropicError(529, "overloaded_error", "Overloaded"),
			check:   func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, hits := newTestAnthropicProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
			// Failures surface to the user; the SDK must not retry.
			if got := hits.Load(); got != 1 {
				t.Fatalf("expected exactly one HTTP call, got %d", got)
			}
		})
	}
}

func TestAnthropicProvider_TruncatedOutput(t *testing.T) {
	p, _ := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"phase":"Fase A","questions":[{"id":1,`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
		Schema:    quizSchema(),
	})
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
