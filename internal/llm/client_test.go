package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fraudlens/internal/config"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here is the answer: {"a":1}. Hope it helps.`, `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`},
		{"no object", "no json here", ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOfflineClient(t *testing.T) {
	c := Offline{}
	_, err := c.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, ErrOffline) {
		t.Errorf("error = %v, want ErrOffline", err)
	}
	if c.Name() != "offline" {
		t.Errorf("Name() = %q, want offline", c.Name())
	}
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatReply("  the verdict  "))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
	got, err := c.Complete(context.Background(), "be terse", "analyze this")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "the verdict" {
		t.Errorf("Complete() = %q, want trimmed reply", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
}

func TestOpenAIClientRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	got, err := c.Complete(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAIClientFailsFastOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), "", "hello"); err == nil {
		t.Fatal("Complete() error = nil, want error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
	}
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{})
	if _, err := c.Complete(context.Background(), "", "hello"); err == nil {
		t.Error("Complete() error = nil, want missing key error")
	}
}

func TestLimiterDelegates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer srv.Close()

	inner := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	l := NewLimiter(inner, 600)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := l.Complete(ctx, "", "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
	if l.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", l.Name())
	}
}

func TestFactorySelectsProvider(t *testing.T) {
	cfg := config.DefaultConfig()

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Name() != "offline" {
		t.Errorf("default provider = %q, want offline", client.Name())
	}

	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	client, err = New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Name() != "openai" {
		t.Errorf("provider = %q, want openai", client.Name())
	}

	// Missing key falls back to offline rather than failing.
	cfg.LLM.APIKey = ""
	client, err = New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Name() != "offline" {
		t.Errorf("provider without key = %q, want offline", client.Name())
	}

	cfg.LLM.Provider = "nope"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() error = nil for unknown provider")
	}
}
