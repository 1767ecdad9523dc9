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

	"github.com/dardja-ai/voice-backend/internal/models"
	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/supaauth"
	"github.com/dardja-ai/voice-backend/internal/usagelog"
)

type fakeAccounts struct {
	profiles map[uuid.UUID]*models.Profile
}

func newFakeAccounts(ps ...*models.Profile) *fakeAccounts {
	f := &fakeAccounts{profiles: map[uuid.UUID]*models.Profile{}}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeAccounts) get(id uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeAccounts) List(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeAccounts) Create(ctx context.Context, id uuid.UUID, email string) (*models.Profile, error) {
	p := &models.Profile{
		ID: id, Email: email, Active: true,
		MaxGenerations: models.TrialMaxGenerations,
		MaxCharacters:  models.TrialMaxCharacters,
		Role:           models.RoleUser,
	}
	f.profiles[id] = p
	return p, nil
}

func (f *fakeAccounts) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, err := f.get(id)
	if err != nil {
		return err
	}
	p.Active = active
	return nil
}

func (f *fakeAccounts) SetActiveByEmail(ctx context.Context, email string, active bool) error {
	for _, p := range f.profiles {
		if p.Email == email {
			p.Active = active
			return nil
		}
	}
	return profile.ErrNotFound
}

func (f *fakeAccounts) ResetUsage(ctx context.Context, id uuid.UUID) error {
	p, err := f.get(id)
	if err != nil {
		return err
	}
	p.UsageCount = 0
	p.TrialUsed = false
	return nil
}

func (f *fakeAccounts) EnablePremium(ctx context.Context, id uuid.UUID) error {
	p, err := f.get(id)
	if err != nil {
		return err
	}
	p.Active = true
	p.TrialUsed = false
	p.UsageCount = 0
	p.MaxGenerations = models.PremiumMaxGenerations
	return nil
}

func (f *fakeAccounts) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	delete(f.profiles, id)
	return nil
}

type fakeAuthAdmin struct {
	users   []supaauth.AuthUser
	deleted []string
}

func (f *fakeAuthAdmin) ListUsers(ctx context.Context) ([]supaauth.AuthUser, error) {
	return f.users, nil
}

func (f *fakeAuthAdmin) DeleteUser(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUsage struct{}

func (fakeUsage) GetSummary(ctx context.Context) ([]usagelog.Summary, error) {
	return []usagelog.Summary{{Voice: "Amel", Provider: "gemini", TotalCalls: 3}}, nil
}

func postUpdate(t *testing.T, h *AdminHandler, userID, action string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"user_id": userID, "action": action})
	req := httptest.NewRequest("POST", "/admin/users/update", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateUser(rec, req)
	return rec
}

func TestUpdateUserTransitions(t *testing.T) {
	target := &models.Profile{
		ID: uuid.New(), Email: "user@example.com", Active: true,
		UsageCount: 1, MaxGenerations: 2, MaxCharacters: 600, Role: models.RoleUser,
	}

	t.Run("deactivate then activate", func(t *testing.T) {
		accounts := newFakeAccounts(target)
		h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

		rec := postUpdate(t, h, target.ID.String(), "deactivate")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, accounts.profiles[target.ID].Active)

		rec = postUpdate(t, h, target.ID.String(), "activate")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, accounts.profiles[target.ID].Active)
	})

	t.Run("reset_usage clears count and trial flag", func(t *testing.T) {
		p := *target
		p.UsageCount = 2
		p.TrialUsed = true
		accounts := newFakeAccounts(&p)
		h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

		rec := postUpdate(t, h, p.ID.String(), "reset_usage")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, accounts.profiles[p.ID].UsageCount)
		assert.False(t, accounts.profiles[p.ID].TrialUsed)
	})

	t.Run("enable_premium independent of prior state", func(t *testing.T) {
		p := *target
		p.Active = false
		p.UsageCount = 7
		p.TrialUsed = true
		p.MaxGenerations = 2
		accounts := newFakeAccounts(&p)
		h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

		rec := postUpdate(t, h, p.ID.String(), "enable_premium")
		assert.Equal(t, http.StatusOK, rec.Code)

		got := accounts.profiles[p.ID]
		assert.True(t, got.Active)
		assert.False(t, got.TrialUsed)
		assert.Equal(t, 0, got.UsageCount)
		assert.Equal(t, models.PremiumMaxGenerations, got.MaxGenerations)
	})

	t.Run("delete removes profile and auth identity", func(t *testing.T) {
		p := *target
		accounts := newFakeAccounts(&p)
		authAdmin := &fakeAuthAdmin{}
		h := NewAdminHandler(accounts, authAdmin, fakeUsage{})

		rec := postUpdate(t, h, p.ID.String(), "delete")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, accounts.profiles)
		assert.Equal(t, []string{p.ID.String()}, authAdmin.deleted)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		accounts := newFakeAccounts(target)
		h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

		rec := postUpdate(t, h, target.ID.String(), "make_coffee")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		accounts := newFakeAccounts()
		h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

		rec := postUpdate(t, h, uuid.NewString(), "activate")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
	})
}

func TestListUsersSeedsMissingProfiles(t *testing.T) {
	existing := &models.Profile{ID: uuid.New(), Email: "old@example.com", Active: true,
		MaxGenerations: 2, MaxCharacters: 600, Role: models.RoleUser}
	orphanID := uuid.New()

	accounts := newFakeAccounts(existing)
	authAdmin := &fakeAuthAdmin{users: []supaauth.AuthUser{
		{ID: existing.ID.String(), Email: existing.Email},
		{ID: orphanID.String(), Email: "orphan@example.com"},
	}}
	h := NewAdminHandler(accounts, authAdmin, fakeUsage{})

	req := httptest.NewRequest("GET", "/admin/users", nil)
	rec := httptest.NewRecorder()
	h.ListUsers(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	require.Contains(t, accounts.profiles, orphanID)
	assert.Equal(t, models.TrialMaxGenerations, accounts.profiles[orphanID].MaxGenerations)
}

func TestToggleActiveByEmail(t *testing.T) {
	p := &models.Profile{ID: uuid.New(), Email: "user@example.com", Active: true,
		MaxGenerations: 2, MaxCharacters: 600, Role: models.RoleUser}
	accounts := newFakeAccounts(p)
	h := NewAdminHandler(accounts, &fakeAuthAdmin{}, fakeUsage{})

	body, _ := json.Marshal(map[string]any{"email": p.Email, "active": false})
	req := httptest.NewRequest("POST", "/admin/toggle-active", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ToggleActive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, accounts.profiles[p.ID].Active)
}

func TestDeleteUserByPath(t *testing.T) {
	p := &models.Profile{ID: uuid.New(), Email: "user@example.com", Active: true,
		MaxGenerations: 2, MaxCharacters: 600, Role: models.RoleUser}
	accounts := newFakeAccounts(p)
	authAdmin := &fakeAuthAdmin{}
	h := NewAdminHandler(accounts, authAdmin, fakeUsage{})

	r := chi.NewRouter()
	r.Delete("/admin/users/{id}", h.DeleteUser)

	req := httptest.NewRequest("DELETE", "/admin/users/"+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, accounts.profiles)
	assert.Equal(t, []string{p.ID.String()}, authAdmin.deleted)
}
