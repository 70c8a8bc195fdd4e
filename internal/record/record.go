// Package record defines the flattened, exportable representation of one
// processed transcript and the projection that produces it.
package record

import (
	"strings"
	"time"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/extract"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/transcript"
)

// DateFormat is the fixed creation-date layout on every row.
const DateFormat = "2006-01-02"

// Field join separators for the flattened list columns.
const (
	tagsSeparator    = ", "
	bulletsSeparator = " • "
	actionsSeparator = " | "
)

// Record is one exportable row. On a failed extraction the title and list
// columns are empty and Summary holds the failure message verbatim, so failed
// rows stay visible and auditable in the export instead of being dropped.
type Record struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Tags        string `json:"tags"`
	Bullets     string `json:"bullets"`
	ActionItems string `json:"action_items"`
	ChatSnippet string `json:"chat_snippet"`
}

// Columns returns the fixed export column order.
func Columns() []string {
	return []string{"date", "title", "summary", "tags", "bullets", "action_items", "chat_snippet"}
}

// Fields returns the row values in Columns order.
func (r Record) Fields() []string {
	return []string{r.Date, r.Title, r.Summary, r.Tags, r.Bullets, r.ActionItems, r.ChatSnippet}
}

// Failed reports whether this row came from a failed extraction.
func (r Record) Failed() bool {
	return r.Title == "" && r.Tags == "" && r.Bullets == ""
}

// Project maps an extraction outcome plus the original transcript onto
// exactly one Record. The mapping is total: whatever the outcome, a row is
// produced.
func Project(res extract.Result, chat string, now time.Time) Record {
	r := Record{
		Date:        now.Format(DateFormat),
		ChatSnippet: transcript.Snippet(chat),
	}

	if !res.OK {
		r.Summary = res.Err
		return r
	}

	r.Title = res.Title
	r.Summary = res.Summary
	r.Tags = strings.Join(res.Tags, tagsSeparator)
	r.Bullets = strings.Join(res.Bullets, bulletsSeparator)
	r.ActionItems = strings.Join(res.ActionItems, actionsSeparator)
	return r
}
