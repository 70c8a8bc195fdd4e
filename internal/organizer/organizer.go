// Package organizer drives chat transcripts through extraction and
// projection into flat history records.
package organizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/composer"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/extract"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/transcript"
)

var (
	// ErrNoTranscripts signals a batch whose input produced no usable
	// segments. The batch is aborted before any extraction call.
	ErrNoTranscripts = errors.New("no transcripts found in input")

	// ErrEmptyTranscript signals a single-chat request with no content.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Extractor turns a composed prompt into the model's raw response.
type Extractor interface {
	Extract(ctx context.Context, req composer.Request) (string, error)
	Ready() error
}

// ProgressFunc is invoked after each transcript in a batch completes,
// whether it succeeded or failed.
type ProgressFunc func(completed, total int)

// Organizer runs transcripts through the extraction pipeline one at a
// time and projects the results into records.
type Organizer struct {
	client Extractor
	now    func() time.Time
}

func New(client Extractor) *Organizer {
	return &Organizer{client: client, now: time.Now}
}

// ProcessOne organizes a single transcript. Extraction and validation
// failures still yield a record, with the error carried in its summary;
// only empty input and a missing credential return an error.
func (o *Organizer) ProcessOne(ctx context.Context, chat string) (record.Record, error) {
	chat = strings.TrimSpace(chat)
	if chat == "" {
		return record.Record{}, ErrEmptyTranscript
	}
	if err := o.client.Ready(); err != nil {
		return record.Record{}, err
	}
	res := o.extract(ctx, chat)
	return record.Project(res, chat, o.now()), nil
}

// ProcessBatch splits blob on delimiter and organizes each segment in
// order. A failed segment becomes a degraded record and never stops the
// rest of the batch. onProgress, if non-nil, fires after every segment.
func (o *Organizer) ProcessBatch(ctx context.Context, blob, delimiter string, onProgress ProgressFunc) ([]record.Record, error) {
	chats := transcript.Split(blob, delimiter)
	if len(chats) == 0 {
		return nil, ErrNoTranscripts
	}
	if err := o.client.Ready(); err != nil {
		return nil, err
	}

	total := len(chats)
	records := make([]record.Record, 0, total)
	for i, chat := range chats {
		res := o.extract(ctx, chat)
		if !res.OK {
			slog.Warn("transcript failed to organize", "index", i, "error", res.Err)
		}
		records = append(records, record.Project(res, chat, o.now()))
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return records, nil
}

// extract composes the prompt, calls the model and validates the
// response. Every failure mode collapses into a failed Result so the
// caller can render it as a visible row.
func (o *Organizer) extract(ctx context.Context, chat string) extract.Result {
	req, err := composer.Render(chat)
	if err != nil {
		return extract.Failure(err.Error())
	}
	raw, err := o.client.Extract(ctx, req)
	if err != nil {
		return extract.Failure(err.Error())
	}
	return extract.Parse(raw)
}
