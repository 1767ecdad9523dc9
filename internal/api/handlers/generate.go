package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dardja-ai/voice-backend/internal/audio"
	"github.com/dardja-ai/voice-backend/internal/cache"
	"github.com/dardja-ai/voice-backend/internal/generation"
	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/quota"
	"github.com/dardja-ai/voice-backend/internal/tts"
)

// Generator runs one synthesis flow for a user.
type Generator interface {
	Generate(ctx context.Context, userID uuid.UUID, req generation.Request) (*generation.Output, error)
}

// DownloadReader fetches a previously stored WAV by id.
type DownloadReader interface {
	Get(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type GenerateHandler struct {
	svc       Generator
	downloads DownloadReader
}

func NewGenerateHandler(svc Generator, downloads DownloadReader) *GenerateHandler {
	return &GenerateHandler{svc: svc, downloads: downloads}
}

// Generate handles POST /generate. Upstream failures map to one generic
// message; the client decides whether the human retries.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	p := profile.FromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	out, err := h.svc.Generate(r.Context(), p.ID, req)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Download handles GET /generate/{id}/download, streaming the stored WAV.
func (h *GenerateHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid download id"})
		return
	}

	if h.downloads == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "download expired"})
		return
	}

	wav, err := h.downloads.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "download expired"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "download unavailable"})
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="dardja_ai_voice.wav"`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(wav)))
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}

func writeGenerateError(w http.ResponseWriter, err error) {
	var denied *generation.DeniedError
	switch {
	case errors.As(err, &denied):
		status := http.StatusForbidden
		if denied.Reason == quota.ReasonScriptTooLong {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{
			"error":  "generation not allowed",
			"reason": string(denied.Reason),
		})
	case errors.Is(err, generation.ErrEmptyScript):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
	case errors.Is(err, context.Canceled):
		// Client went away; 499 in spirit, nothing useful to send.
		w.WriteHeader(http.StatusRequestTimeout)
	case errors.Is(err, tts.ErrUpstreamUnavailable), errors.Is(err, tts.ErrUpstreamResponseMalformed):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "voice generation failed, please try again"})
	case errors.Is(err, audio.ErrInvalidAudioPayload):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "voice generation failed, please try again"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "voice generation failed, please try again"})
	}
}
