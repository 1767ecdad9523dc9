package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dardja-ai/voice-backend/internal/audio"
	"github.com/dardja-ai/voice-backend/internal/cache"
	"github.com/dardja-ai/voice-backend/internal/generation"
	"github.com/dardja-ai/voice-backend/internal/models"
	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/quota"
	"github.com/dardja-ai/voice-backend/internal/tts"
)

type fakeGenerator struct {
	out *generation.Output
	err error
}

func (f *fakeGenerator) Generate(ctx context.Context, userID uuid.UUID, req generation.Request) (*generation.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeDownloads struct {
	data map[uuid.UUID][]byte
}

func (f *fakeDownloads) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	wav, ok := f.data[id]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return wav, nil
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	p := &models.Profile{ID: uuid.New(), Active: true, MaxGenerations: 2, MaxCharacters: 600}
	return req.WithContext(profile.WithProfile(req.Context(), p))
}

func TestGenerateSuccess(t *testing.T) {
	h := NewGenerateHandler(&fakeGenerator{out: &generation.Output{
		AudioBase64:    "AAEC",
		UsageCount:     1,
		MaxGenerations: 2,
	}}, nil)

	body, _ := json.Marshal(map[string]string{"text": "hello", "voice": "Amel"})
	rec := httptest.NewRecorder()
	h.Generate(rec, authedRequest("POST", "/api/v1/generate", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var out generation.Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "AAEC", out.AudioBase64)
	assert.Equal(t, 1, out.UsageCount)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"quota exhausted", &generation.DeniedError{Reason: quota.ReasonQuotaExhausted}, http.StatusForbidden, "quota_exhausted"},
		{"account deactivated", &generation.DeniedError{Reason: quota.ReasonAccountDeactivated}, http.StatusForbidden, "account_deactivated"},
		{"script too long", &generation.DeniedError{Reason: quota.ReasonScriptTooLong}, http.StatusUnprocessableEntity, "script_too_long"},
		{"upstream unavailable", tts.ErrUpstreamUnavailable, http.StatusBadGateway, ""},
		{"upstream malformed", tts.ErrUpstreamResponseMalformed, http.StatusBadGateway, ""},
		{"unframeable audio", audio.ErrInvalidAudioPayload, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewGenerateHandler(&fakeGenerator{err: tt.err}, nil)

			body, _ := json.Marshal(map[string]string{"text": "hello", "voice": "Amel"})
			rec := httptest.NewRecorder()
			h.Generate(rec, authedRequest("POST", "/api/v1/generate", body))

			assert.Equal(t, tt.status, rec.Code)
			if tt.reason != "" {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.reason, resp["reason"])
			}
		})
	}
}

func TestGenerateRequiresText(t *testing.T) {
	h := NewGenerateHandler(&fakeGenerator{}, nil)

	body, _ := json.Marshal(map[string]string{"voice": "Amel"})
	rec := httptest.NewRecorder()
	h.Generate(rec, authedRequest("POST", "/api/v1/generate", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRequiresProfile(t *testing.T) {
	h := NewGenerateHandler(&fakeGenerator{}, nil)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	req := httptest.NewRequest("POST", "/api/v1/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDownload(t *testing.T) {
	id := uuid.New()
	wav := []byte("RIFF....WAVE")
	h := NewGenerateHandler(&fakeGenerator{}, &fakeDownloads{data: map[uuid.UUID][]byte{id: wav}})

	r := chi.NewRouter()
	r.Get("/generate/{id}/download", h.Download)

	req := httptest.NewRequest("GET", "/generate/"+id.String()+"/download", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, wav, rec.Body.Bytes())

	// expired id
	req = httptest.NewRequest("GET", "/generate/"+uuid.NewString()+"/download", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
