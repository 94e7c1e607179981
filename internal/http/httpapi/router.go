package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options carries router-level configuration.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
}

// NewRouter wires the API surface.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale("es", opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	// Health
	r.Get("/v1/healthz", app.Health)

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
		r.Get("/google/accounts", app.GoogleAccounts)
		r.Post("/google", app.GoogleSignIn)
		r.Post("/logout", app.Logout)
	})

	// Catalog routes stay public so the landing page can render costs.
	r.Get("/models", app.Models)
	r.Get("/credits/packages", app.Packages)

	// Everything below needs a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(app.Users))

		r.Get("/me", app.Me)

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", app.Balance)
			r.Post("/topup", app.Topup)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Post("/", app.NewChat)
			r.Get("/", app.ListChats)
			r.Get("/{id}", app.GetChat)
			r.Post("/{id}/messages", app.SendMessage)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/api-key", app.GetAPIKey)
			r.Put("/api-key", app.SetAPIKey)
		})
	})

	return r
}
