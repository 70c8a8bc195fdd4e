package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/composer"
)

var testRequest = composer.Request{
	System: "You are an organizer.",
	User:   "Transcript: hello",
}

func mockAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-key", "", srv.URL)
}

func TestExtract_RequestShape(t *testing.T) {
	var got chatRequest
	var auth string

	c := mockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`)
	})

	if _, err := c.Extract(context.Background(), testRequest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != defaultModel {
		t.Errorf("model = %q, want %q", got.Model, defaultModel)
	}
	if got.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", got.Temperature)
	}
	if got.MaxTokens != 600 {
		t.Errorf("max_tokens = %d, want 600", got.MaxTokens)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format.type = %q, want json_object", got.ResponseFormat.Type)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != testRequest.System {
		t.Errorf("system message = %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != testRequest.User {
		t.Errorf("user message = %+v", got.Messages[1])
	}
}

func TestExtract_ReturnsContent(t *testing.T) {
	want := `{"title":"T","summary":"S","tags":[],"bullets":[]}`
	c := mockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": want}},
			},
		}
		json.NewEncoder(w).Encode(payload)
	})

	got, err := c.Extract(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestExtract_MissingAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the network despite missing credential")
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("", "", srv.URL)

	if err := c.Ready(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Ready() = %v, want ErrMissingAPIKey", err)
	}
	if _, err := c.Extract(context.Background(), testRequest); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Extract() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestExtract_UpstreamError(t *testing.T) {
	c := mockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	})

	_, err := c.Extract(context.Background(), testRequest)
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q does not mention status", err)
	}
}

func TestExtract_EmptyChoices(t *testing.T) {
	c := mockAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	if _, err := c.Extract(context.Background(), testRequest); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("k", "")
	if c.model != defaultModel {
		t.Errorf("model = %q, want %q", c.model, defaultModel)
	}
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, defaultBaseURL)
	}
	if err := c.Ready(); err != nil {
		t.Errorf("Ready() = %v", err)
	}
}
