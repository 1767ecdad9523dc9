package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/storage"
	"github.com/dardja-ai/voice-backend/internal/tts"
)

type VoicesHandler struct {
	store storage.Storage
}

func NewVoicesHandler(store storage.Storage) *VoicesHandler {
	return &VoicesHandler{store: store}
}

type voiceEntry struct {
	Label      string `json:"label"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// List returns the voice catalog with public preview-clip URLs.
func (h *VoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := make([]voiceEntry, 0, len(tts.Catalog))
	for _, v := range tts.Catalog {
		e := voiceEntry{Label: v.Label}
		if h.store != nil && v.PreviewFile != "" {
			e.PreviewURL = h.store.PublicURL(v.PreviewFile)
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"voices": entries})
}

// UploadPreview replaces the preview clip for a catalog voice. Admin only,
// enforced by the route middleware.
func (h *VoicesHandler) UploadPreview(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	var file string
	for _, v := range tts.Catalog {
		if v.Label == label {
			file = v.PreviewFile
			break
		}
	}
	if file == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown voice"})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio content type required"})
		return
	}

	if err := h.store.Upload(r.Context(), file, r.Body, contentType); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "preview upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "preview_url": h.store.PublicURL(file)})
}

// Me returns the caller's own profile so the frontend can render counters
// without a second round trip to the store.
func Me(w http.ResponseWriter, r *http.Request) {
	p := profile.FromContext(r.Context())
	if p == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
