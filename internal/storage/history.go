// Package storage holds the session history: an ordered, append-only
// collection of every row produced since the process started. It is backed
// by an in-memory SQLite database, so the history dies with the process —
// there is deliberately no on-disk mode.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// History is the session-scoped accumulator. Rows are only ever appended;
// nothing is updated, reordered, or deleted within a session.
type History struct {
	db *sql.DB
}

// Open creates a fresh, empty session history and runs migrations.
func Open() (*History, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection is required: every new connection to :memory:
	// would see its own fresh, empty database.
	db.SetMaxOpenConns(1)

	h := &History{db: db}
	if err := h.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return h, nil
}

// Close discards the session history.
func (h *History) Close() error {
	return h.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (h *History) migrate() error {
	if _, err := h.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := h.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := h.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

const insertRow = `
	INSERT INTO history (id, date, title, summary, tags, bullets, action_items, chat_snippet, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Append adds one record to the end of the history.
func (h *History) Append(r record.Record) error {
	_, err := h.db.Exec(insertRow,
		uuid.New().String(), r.Date, r.Title, r.Summary, r.Tags,
		r.Bullets, r.ActionItems, r.ChatSnippet,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// Extend appends a contiguous run of records in call order, atomically: a
// concurrent snapshot observes all of the run or none of it.
func (h *History) Extend(rs []record.Record) error {
	if len(rs) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning extend transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range rs {
		if _, err := tx.Exec(insertRow,
			uuid.New().String(), r.Date, r.Title, r.Summary, r.Tags,
			r.Bullets, r.ActionItems, r.ChatSnippet, now,
		); err != nil {
			return fmt.Errorf("appending record in batch: %w", err)
		}
	}

	return tx.Commit()
}

// Snapshot returns the full ordered history, oldest first.
func (h *History) Snapshot() ([]record.Record, error) {
	return h.list(-1, 0)
}

// List returns a page of the ordered history, oldest first.
func (h *History) List(limit, offset int) ([]record.Record, error) {
	if limit < 0 {
		limit = -1
	}
	return h.list(limit, offset)
}

func (h *History) list(limit, offset int) ([]record.Record, error) {
	rows, err := h.db.Query(`
		SELECT date, title, summary, tags, bullets, action_items, chat_snippet
		FROM history ORDER BY seq ASC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.Date, &r.Title, &r.Summary, &r.Tags, &r.Bullets, &r.ActionItems, &r.ChatSnippet); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of rows in the history.
func (h *History) Count() (int, error) {
	var n int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// IsEmpty reports whether anything has been processed this session.
func (h *History) IsEmpty() (bool, error) {
	n, err := h.Count()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
