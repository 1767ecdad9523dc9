package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dardja-ai/voice-backend/internal/models"
	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/supaauth"
	"github.com/dardja-ai/voice-backend/internal/usagelog"
)

// AccountStore is the subset of the profile service the admin panel uses.
type AccountStore interface {
	List(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetActiveByEmail(ctx context.Context, email string, active bool) error
	ResetUsage(ctx context.Context, id uuid.UUID) error
	EnablePremium(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthAdmin manages the backing auth identities.
type AuthAdmin interface {
	ListUsers(ctx context.Context) ([]supaauth.AuthUser, error)
	DeleteUser(ctx context.Context, id string) error
}

// UsageReader serves the per-voice usage summary.
type UsageReader interface {
	GetSummary(ctx context.Context) ([]usagelog.Summary, error)
}

type AdminHandler struct {
	accounts AccountStore
	authAPI  AuthAdmin
	usage    UsageReader
}

func NewAdminHandler(accounts AccountStore, authAPI AuthAdmin, usage UsageReader) *AdminHandler {
	return &AdminHandler{accounts: accounts, authAPI: authAPI, usage: usage}
}

// ListUsers merges auth identities with profile rows. Identities without a
// row (accounts that predate the signup trigger) get a trial row seeded on
// the spot so the panel never shows half a user.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.accounts.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list users failed"})
		return
	}

	known := make(map[uuid.UUID]bool, len(profiles))
	for _, p := range profiles {
		known[p.ID] = true
	}

	authUsers, err := h.authAPI.ListUsers(r.Context())
	if err != nil {
		// Profiles alone are still a usable answer.
		slog.Warn("list auth users", "error", err)
	}
	for _, au := range authUsers {
		id, err := uuid.Parse(au.ID)
		if err != nil || known[id] {
			continue
		}
		p, err := h.accounts.Create(r.Context(), id, au.Email)
		if err != nil {
			slog.Warn("seed profile for auth user", "auth_id", au.ID, "error", err)
			continue
		}
		profiles = append(profiles, *p)
	}

	writeJSON(w, http.StatusOK, profiles)
}

// DeleteUser removes both the profile row and the auth identity.
// Irreversible.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	if err := h.deleteAccount(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ToggleActive flips the active flag by email. Kept for the legacy admin
// panel; UpdateUser is the preferred path.
func (h *AdminHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email required"})
		return
	}

	if err := h.accounts.SetActiveByEmail(r.Context(), req.Email, req.Active); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "update failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UpdateUser applies one named transition to a target account.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	ctx := r.Context()
	switch req.Action {
	case "activate":
		err = h.accounts.SetActive(ctx, id, true)
	case "deactivate":
		err = h.accounts.SetActive(ctx, id, false)
	case "reset_usage":
		err = h.accounts.ResetUsage(ctx, id)
	case "enable_premium":
		err = h.accounts.EnablePremium(ctx, id)
	case "delete":
		err = h.deleteAccount(ctx, id)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "unknown action"})
		return
	}

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "user not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "update failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Usage returns the per-voice generation summary.
func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.usage.GetSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "usage summary failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summary})
}

// deleteAccount removes the auth identity first: a dangling profile row is
// recoverable, a dangling login is a security hole.
func (h *AdminHandler) deleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := h.authAPI.DeleteUser(ctx, id.String()); err != nil {
		return err
	}
	if err := h.accounts.Delete(ctx, id); err != nil && !errors.Is(err, profile.ErrNotFound) {
		return err
	}
	return nil
}
