package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dardja-ai/voice-backend/internal/api/handlers"
	"github.com/dardja-ai/voice-backend/internal/api/middleware"
	"github.com/dardja-ai/voice-backend/internal/auth"
	"github.com/dardja-ai/voice-backend/internal/cache"
	"github.com/dardja-ai/voice-backend/internal/config"
	"github.com/dardja-ai/voice-backend/internal/generation"
	"github.com/dardja-ai/voice-backend/internal/profile"
	"github.com/dardja-ai/voice-backend/internal/storage"
	"github.com/dardja-ai/voice-backend/internal/supaauth"
	"github.com/dardja-ai/voice-backend/internal/tts"
	"github.com/dardja-ai/voice-backend/internal/usagelog"
)

type Router struct {
	mux      *chi.Mux
	db       *pgxpool.Pool
	redis    *redis.Client
	cfg      *config.Config
	profiles *profile.Service
	jwt      *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	profiles := profile.NewService(db)
	return &Router{
		mux:      chi.NewRouter(),
		db:       db,
		redis:    rdb,
		cfg:      cfg,
		profiles: profiles,
		jwt:      auth.NewJWTMiddleware(cfg.Auth.JWTSecret, profiles),
	}
}

func newProvider(cfg config.TTSConfig) tts.Provider {
	if cfg.Backend == "openai" {
		return tts.NewOpenAI(tts.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	}
	return tts.NewGemini(tts.GeminiConfig{
		APIKey:  cfg.GeminiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	})
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	provider := newProvider(rt.cfg.TTS)
	recorder := usagelog.NewService(rt.db)
	previews := storage.NewSupabaseStorage(rt.cfg.Auth.SupabaseURL, rt.cfg.Auth.ServiceKey, rt.cfg.Storage.PreviewBucket)
	authAdmin := supaauth.NewAdminClient(rt.cfg.Auth.SupabaseURL, rt.cfg.Auth.ServiceKey)

	var downloads *cache.Downloads
	if rt.redis != nil {
		downloads = cache.NewDownloads(rt.redis)
	}

	var downloadStore generation.DownloadStore
	var downloadReader handlers.DownloadReader
	if downloads != nil {
		downloadStore = downloads
		downloadReader = downloads
	}
	genSvc := generation.NewService(rt.profiles, provider, recorder, downloadStore)

	genH := handlers.NewGenerateHandler(genSvc, downloadReader)
	voicesH := handlers.NewVoicesHandler(previews)
	adminH := handlers.NewAdminHandler(rt.profiles, authAdmin, recorder)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		r.Get("/me", handlers.Me)
		r.Get("/voices", voicesH.List)

		r.Post("/generate", genH.Generate)
		r.Get("/generate/{id}/download", genH.Download)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/users", adminH.ListUsers)
			r.Delete("/users/{id}", adminH.DeleteUser)
			r.Post("/users/update", adminH.UpdateUser)
			r.Post("/toggle-active", adminH.ToggleActive)
			r.Get("/usage", adminH.Usage)
			r.Post("/voices/{label}/preview", voicesH.UploadPreview)
		})
	})

	return r
}
