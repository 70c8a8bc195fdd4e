// Package export renders organized chat records as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
)

const (
	// Filename is the suggested name for downloaded exports.
	Filename = "organized_chats.csv"

	// ContentType identifies CSV payloads on the HTTP surface.
	ContentType = "text/csv; charset=utf-8"
)

// Write streams records as CSV to w. The header row is always written,
// even when there are no records.
func Write(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Columns()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(r.Fields()); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Bytes renders records as an in-memory CSV document.
func Bytes(records []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
