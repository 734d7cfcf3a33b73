package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "google/gemini-2.0-flash-exp",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("model = %q, want %q", p.ModelID(), "google/gemini-2.0-flash-exp")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("default base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "meta-llama/llama-3-8b",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The provider should be created successfully with default base URL.
		if p == nil {
			t.Fatal("expected non-nil provider")
		}
	})

	t.Run("custom model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Model ID should be used as-is (no friendly-name mapping).
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("custom base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  "sk-or-test",
			Model:   "google/gemini-2.0-flash-exp",
			BaseURL: "https://custom.openrouter.example/v1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil {
			t.Fatal("expected non-nil provider")
		}
	})
}

func TestOpenRouterProvider_SendsAttributionAndAttachment(t *testing.T) {
	var (
		title, referer, path string
		body                 chatRequestBody
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		referer = r.Header.Get("HTTP-Referer")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionJSON(`{"isCorrect":true,"score":80,"feedback":"发音清楚"}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.0-flash-exp",
		BaseURL: server.URL + "/api/v1",
		Referer: "https://school.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Generate(context.Background(), Request{
		Messages: []Message{{
			Role:    RoleUser,
			Content: "Evaluate this answer.",
			Attachments: []Attachment{
				{MIMEType: "image/png", Data: []byte("png")},
				{MIMEType: "audio/webm", Data: []byte("opus")},
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path != "/api/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
	if title != "Mandarin Exam" || referer != "https://school.example" {
		t.Errorf("attribution headers = %q, %q", title, referer)
	}
	var parts []chatPart
	if err := json.Unmarshal(body.Messages[0].Content, &parts); err != nil {
		t.Fatalf("user content is not a part list: %s", body.Messages[0].Content)
	}
	if len(parts) != 3 || parts[1].Type != "image_url" || parts[2].Type != "text" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if !strings.Contains(parts[2].Text, "audio/webm") {
		t.Errorf("audio attachment should be described, got %q", parts[2].Text)
	}
}
