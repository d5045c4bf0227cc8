package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"pagetalk/internal/extract"
	"pagetalk/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ProcessWebpage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No content provided", http.StatusBadRequest)
		return
	}

	count, err := h.service.ProcessWebpage(r.Context(), req.Content)
	if err != nil {
		slog.ErrorContext(r.Context(), "webpage processing failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeReady(r.Context(), w, fmt.Sprintf("Processed %d characters.", count))
}

func (h *Handler) ProcessYouTube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No YouTube Video ID provided", http.StatusBadRequest)
		return
	}

	count, err := h.service.ProcessYouTube(r.Context(), req.VideoID)
	if err != nil {
		if errors.Is(err, extract.ErrNoTranscript) {
			h.writeError(r.Context(), w, "NO_TRANSCRIPT", "No transcript available for this video.", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "youtube processing failed", "error", err, "video_id", req.VideoID)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeReady(r.Context(), w, fmt.Sprintf("Processed %d characters.", count))
}

func (h *Handler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PDFURL string `json:"pdf_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.PDFURL == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No PDF URL provided", http.StatusBadRequest)
		return
	}

	count, err := h.service.ProcessPDF(r.Context(), req.PDFURL)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			h.writeError(r.Context(), w, "EXTRACTION_ERROR", "Could not extract text from this PDF.", http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "pdf processing failed", "error", err, "url", req.PDFURL)
		if errors.Is(err, extract.ErrFetch) {
			h.writeError(r.Context(), w, "FETCH_ERROR", fmt.Sprintf("Failed to process PDF. Is the URL correct and public? %v", err), http.StatusInternalServerError)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeReady(r.Context(), w, fmt.Sprintf("Processed %d characters from PDF.", count))
}

func (h *Handler) writeReady(ctx context.Context, w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"status":  "ready",
		"message": message,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
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
