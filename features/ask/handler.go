package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pagetalk/internal/middleware"
	"pagetalk/internal/retrieval"
)

type Answerer interface {
	Answer(ctx context.Context, question string, history []retrieval.Turn) (string, error)
}

type Handler struct {
	answerer Answerer
}

func NewHandler(a Answerer) *Handler {
	return &Handler{answerer: a}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string           `json:"question"`
		History  []retrieval.Turn `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No question provided", http.StatusBadRequest)
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question, req.History)
	if err != nil {
		if errors.Is(err, retrieval.ErrNotReady) {
			h.writeError(r.Context(), w, "NOT_READY", "Page not processed yet.", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "question answering failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"answer": answer}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", "error", err)
	}
}
