package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/config"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestOrganizeRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /organize": `{"date":"2025-03-14","title":"Planning","summary":"a summary","tags":"go","bullets":"p","action_items":"","chat_snippet":"User: hi"}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/organize", map[string]string{"transcript": "User: hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rec record.Record
	if err := decodeJSON(resp, &rec); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rec.Title != "Planning" {
		t.Errorf("title = %q, want Planning", rec.Title)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/organize" {
		t.Errorf("request = %s %s", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q", r.Auth)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["transcript"] != "User: hi" {
		t.Errorf("body.transcript = %q", body["transcript"])
	}
}

func TestOrganizeCommand_MissingInput(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"organize"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing input flags")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestBatchCommand_MissingInput(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"batch"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing input flags")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestBatchRequest_WrapsDelimiter(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /organize/batch": `{"count":0,"records":[]}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/organize/batch", map[string]string{
		"blob":      "a\n=====\nb",
		"delimiter": "\n=====\n",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	var body map[string]string
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["delimiter"] != "\n=====\n" {
		t.Errorf("delimiter = %q, want newline-wrapped", body["delimiter"])
	}
}

func TestHistoryRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /history": `[{"date":"2025-03-14","title":"One","summary":"s","tags":"","bullets":"","action_items":"","chat_snippet":""}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/history?limit=20&offset=0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var records []record.Record
	if err := decodeJSON(resp, &records); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(records) != 1 || records[0].Title != "One" {
		t.Fatalf("records = %+v", records)
	}
	if !strings.Contains(ts.requests[0].Path, "limit=20") {
		t.Errorf("path = %q", ts.requests[0].Path)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"authentication_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/history")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestAPIClient_NoTokenOmitsHeader(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = ""

	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if ts.requests[0].Auth != "" {
		t.Errorf("auth header = %q, want empty", ts.requests[0].Auth)
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4600
	cfg.OpenAI.Model = "gpt-4o-mini"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4600" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4600 in ShowAll output")
	}
}

func TestCountLabel(t *testing.T) {
	tests := []struct {
		count, limit int
		want         string
	}{
		{5, 100, "5"},
		{0, 100, "0"},
		{100, 100, "100+"},
		{150, 100, "150+"},
	}
	for _, tt := range tests {
		got := countLabel(tt.count, tt.limit)
		if got != tt.want {
			t.Errorf("countLabel(%d, %d) = %q, want %q", tt.count, tt.limit, got, tt.want)
		}
	}
}
