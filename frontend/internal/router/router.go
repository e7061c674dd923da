package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/openreview/openreview-web/frontend/internal/handler"
	frontend_mw "github.com/openreview/openreview-web/frontend/internal/middleware"
	"github.com/openreview/openreview-web/frontend/internal/setup"
	mw "github.com/openreview/openreview-web/shared/middleware"
	"github.com/openreview/openreview-web/shared/middleware/metrics"
)

// New creates the chi router with every page and API route.
// IMPORTANT! limiters set with .Use count requests of all routes in that group together
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Public
	h := deps.Handler

	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, mw.PageCSP("")))

	// Probes and static assets need neither sessions nor CSRF
	r.Get("/healthz", handler.HealthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/favicon.ico", h.FaviconHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(h.Static)))

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.OptionalAuth())
		}
		r.Use(frontend_mw.GenerateCSRFToken(frontend_mw.CSRFConfig{SecureCookies: cfg.SecureCookies}))
		r.Use(frontend_mw.ValidateCSRFToken())

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
		})

		// Signup and reset are for visitors without an account session
		r.Group(func(r chi.Router) {
			r.Use(frontend_mw.RedirectIfSignedIn(cfg.HomeURL))

			r.Get("/signup", h.SignupGetHandler)
			r.Get("/signup/institution-help", h.InstitutionHelpHandler)
			r.Get("/reset", h.ResetGetHandler)

			// Progressive forms post once per step. The per-email budget is taken by the
			// signup dispatcher when a form actually sends, here only a coarse IP cap.
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(cfg.EmailRateLimit*10, cfg.EmailRateWindow))
				r.Post("/signup/new", h.SignupNewPostHandler)
				r.Post("/signup/existing", h.SignupExistingPostHandler)
				r.Post("/signup/claim", h.SignupClaimPostHandler)
				r.Post("/reset", h.ResetPostHandler)
			})
		})

		r.Get("/contact", h.ContactGetHandler)
		r.With(
			mw.RateLimit(deps.EmailLimiter, mw.GetEmailFromForm("from")),
			httprate.LimitByIP(cfg.EmailRateLimit, cfg.EmailRateWindow),
		).Post("/contact", h.ContactPostHandler)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type", frontend_mw.CSRFHeader},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Use(httprate.LimitByIP(cfg.LookupRateLimit, cfg.LookupRateWindow))

			r.Post("/signup/name", h.PostFullnameHandler)
			r.Get("/signup/state", h.GetStateHandler)
			r.Get("/profiles/{id}/notes", h.GetNotesHandler)
		})
	})

	return r
}
