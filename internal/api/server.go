// Package api exposes the organizer over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/export"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/openai"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/organizer"
	"github.com/CodenameMichaelE/ai-chat-organizer-mvp/internal/record"
)

const maxOrganizeBodySize = 1 << 20 // 1MB
const maxBatchBodySize = 10 << 20   // 10MB

// Pipeline is the slice of the organizer the API layer needs.
type Pipeline interface {
	ProcessOne(ctx context.Context, chat string) (record.Record, error)
	ProcessBatch(ctx context.Context, blob, delimiter string, onProgress organizer.ProgressFunc) ([]record.Record, error)
}

// HistoryStore abstracts the session history for the API layer.
type HistoryStore interface {
	Append(rec record.Record) error
	Extend(recs []record.Record) error
	List(limit, offset int) ([]record.Record, error)
	Snapshot() ([]record.Record, error)
	Count() (int, error)
}

type Deps struct {
	Organizer Pipeline
	Store     HistoryStore
	Token     string // optional; empty disables bearer auth
}

type OrganizeRequest struct {
	Transcript string `json:"transcript"`
}

type BatchRequest struct {
	Blob      string `json:"blob"`
	Delimiter string `json:"delimiter"`
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Post("/organize", handleOrganize(deps))
		r.Post("/organize/batch", handleBatch(deps))
		r.Get("/history", handleHistory(deps))
		r.Get("/export", handleExport(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleOrganize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxOrganizeBodySize)
		defer r.Body.Close()

		var req OrganizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		rec, err := deps.Organizer.ProcessOne(r.Context(), req.Transcript)
		if errors.Is(err, organizer.ErrEmptyTranscript) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "transcript is required and must not be empty")
			return
		}
		if errors.Is(err, openai.ErrMissingAPIKey) {
			httpError(w, http.StatusServiceUnavailable, "api_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to organize transcript: %v", err)
			return
		}

		if err := deps.Store.Append(rec); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to record history: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	}
}

func handleBatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBatchBodySize)
		defer r.Body.Close()

		var req BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		records, err := deps.Organizer.ProcessBatch(r.Context(), req.Blob, req.Delimiter, func(completed, total int) {
			slog.Info("batch progress", "completed", completed, "total", total)
		})
		if errors.Is(err, organizer.ErrNoTranscripts) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "no transcripts found in input")
			return
		}
		if errors.Is(err, openai.ErrMissingAPIKey) {
			httpError(w, http.StatusServiceUnavailable, "api_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to organize batch: %v", err)
			return
		}

		if err := deps.Store.Extend(records); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to record history: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":   len(records),
			"records": records,
		})
	}
}

func handleHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		records, err := deps.Store.List(limit, offset)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list history: %v", err)
			return
		}
		if records == nil {
			records = []record.Record{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

func handleExport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.Snapshot()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read history: %v", err)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		if err := export.Write(w, records); err != nil {
			slog.Error("writing csv export", "error", err)
		}
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
