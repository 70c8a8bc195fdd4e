package record

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/extract"
)

var testDate = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func TestProject_Success(t *testing.T) {
	res := extract.Result{
		OK:          true,
		Title:       "Go Concurrency",
		Summary:     "A chat about goroutines.",
		Tags:        []string{"go", "concurrency"},
		Bullets:     []string{"channels", "select"},
		ActionItems: []string{"read the memory model", "try errgroup"},
	}

	r := Project(res, "user: how do goroutines work?", testDate)

	if r.Date != "2025-03-14" {
		t.Errorf("Date = %q, want 2025-03-14", r.Date)
	}
	if r.Title != "Go Concurrency" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Tags != "go, concurrency" {
		t.Errorf("Tags = %q", r.Tags)
	}
	if r.Bullets != "channels • select" {
		t.Errorf("Bullets = %q", r.Bullets)
	}
	if r.ActionItems != "read the memory model | try errgroup" {
		t.Errorf("ActionItems = %q", r.ActionItems)
	}
	if r.ChatSnippet != "user: how do goroutines work?" {
		t.Errorf("ChatSnippet = %q", r.ChatSnippet)
	}
	if r.Failed() {
		t.Error("success row reported as failed")
	}
}

func TestProject_Failure(t *testing.T) {
	res := extract.Failure("missing key in JSON: summary")

	r := Project(res, "some chat", testDate)

	if r.Title != "" || r.Tags != "" || r.Bullets != "" || r.ActionItems != "" {
		t.Errorf("failure row has non-empty extracted fields: %+v", r)
	}
	if r.Summary != "missing key in JSON: summary" {
		t.Errorf("Summary = %q, want failure message verbatim", r.Summary)
	}
	if r.ChatSnippet != "some chat" {
		t.Errorf("ChatSnippet = %q", r.ChatSnippet)
	}
	if !r.Failed() {
		t.Error("failure row not reported as failed")
	}
}

func TestProject_LongTranscriptTruncated(t *testing.T) {
	chat := strings.Repeat("x", 600)

	r := Project(extract.Failure("err"), chat, testDate)

	if len(r.ChatSnippet) != 503 {
		t.Errorf("snippet length = %d, want 503", len(r.ChatSnippet))
	}
	if !strings.HasSuffix(r.ChatSnippet, "...") {
		t.Error("snippet missing truncation marker")
	}
}

func TestProject_Deterministic(t *testing.T) {
	res := extract.Result{OK: true, Title: "T", Summary: "S", Tags: []string{"a"}, Bullets: []string{"b"}, ActionItems: []string{}}

	first := Project(res, "chat", testDate)
	second := Project(res, "chat", testDate)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("projection not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestColumnsAndFieldsAgree(t *testing.T) {
	r := Record{
		Date: "d", Title: "t", Summary: "s", Tags: "g",
		Bullets: "b", ActionItems: "a", ChatSnippet: "c",
	}

	cols := Columns()
	fields := r.Fields()
	if len(cols) != 7 || len(fields) != 7 {
		t.Fatalf("columns/fields = %d/%d, want 7/7", len(cols), len(fields))
	}
	want := []string{"date", "title", "summary", "tags", "bullets", "action_items", "chat_snippet"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("Columns() = %q", cols)
	}
	if !reflect.DeepEqual(fields, []string{"d", "t", "s", "g", "b", "a", "c"}) {
		t.Errorf("Fields() = %q", fields)
	}
}
