package profile

import (
	"context"

	"github.com/dardja-ai/voice-backend/internal/models"
)

type contextKey string

const profileKey contextKey = "profile"

func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func FromContext(ctx context.Context) *models.Profile {
	p, _ := ctx.Value(profileKey).(*models.Profile)
	return p
}
