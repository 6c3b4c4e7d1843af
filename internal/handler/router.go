package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig wires the router's collaborators and policy knobs.
type RouterConfig struct {
	Auth     *AuthHandler
	Tasks    *TaskHandler
	Sessions *SessionHandler
	Settings *SettingsHandler

	Tokens TokenVerifier
	Users  UserDirectory
	// RequireActiveUser makes the gateway re-check user existence on
	// every request.
	RequireActiveUser bool

	LoginLimiter *RateLimiter

	// AllowedOrigin is the single origin permitted by CORS.
	AllowedOrigin string

	// Observe wraps every request, typically with the metrics middleware.
	Observe func(http.Handler) http.Handler
	// Metrics serves GET /metrics.
	Metrics http.Handler
}

// NewRouter assembles the route table. The split between the public group
// (health, metrics, login handshake) and the bearer-gated group is the
// whole authorization boundary: everything else under /api requires a
// verified credential before any handler runs.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recover)
	if cfg.Observe != nil {
		r.Use(cfg.Observe)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		// Login handshake (public, rate limited).
		r.Group(func(r chi.Router) {
			if cfg.LoginLimiter != nil {
				r.Use(cfg.LoginLimiter.Middleware)
			}
			r.Get("/auth/{provider}", cfg.Auth.Redirect)
			r.Get("/auth/{provider}/callback", cfg.Auth.Callback)
		})

		// Everything else requires a verified bearer credential.
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.Tokens, cfg.Users, cfg.RequireActiveUser))

			r.Get("/auth/me", cfg.Auth.Me)
			r.Post("/auth/token", cfg.Auth.Token)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", cfg.Tasks.List)
				r.Post("/", cfg.Tasks.Create)
				r.Get("/stats", cfg.Tasks.Stats)
				r.Put("/{id}", cfg.Tasks.Update)
				r.Delete("/{id}", cfg.Tasks.Delete)
				r.Patch("/{id}/toggle", cfg.Tasks.Toggle)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", cfg.Sessions.List)
				r.Post("/", cfg.Sessions.Start)
				r.Get("/today", cfg.Sessions.Today)
				r.Get("/focus-time/{period}", cfg.Sessions.FocusStats)
				r.Put("/{id}", cfg.Sessions.Update)
				r.Post("/{id}/complete", cfg.Sessions.Complete)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", cfg.Settings.Get)
				r.Put("/", cfg.Settings.Update)
			})
		})
	})

	return r
}
