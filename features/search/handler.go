package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler exposes the search service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Search handles GET /search?q=...&limit=N.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(ctx, w, "MISSING_QUERY", "q parameter is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(ctx, w, "INVALID_LIMIT", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := h.service.Search(ctx, query, limit)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "query", query, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []Result{}
	}
	h.writeJSON(ctx, w, map[string]any{"results": results})
}

// Ask handles POST /ask with body {"question": "..."}.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Question == "" {
		h.writeError(ctx, w, "INVALID_BODY", "body must be JSON with a question field", http.StatusBadRequest)
		return
	}

	answer, err := h.service.Ask(ctx, body.Question)
	if err != nil {
		slog.ErrorContext(ctx, "ask failed", "question", body.Question, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "question answering failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(ctx, w, answer)
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "stats failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to load stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(ctx, w, stats)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message}); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", "error", err)
	}
}
