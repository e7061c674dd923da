package handler

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/openreview/openreview-web/frontend/internal/markdown"
	"github.com/openreview/openreview-web/frontend/internal/middleware"
	"github.com/openreview/openreview-web/frontend/internal/render"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/shared/config"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/institution"
)

// API is the part of the OpenReview client the pages call directly. The signup
// sessions get theirs through the session factory.
type API interface {
	signup.AccountAPI
	signup.NotesFinder
	SendFeedback(ctx context.Context, feedback domain.Feedback) error
}

type Handler struct {
	Renderer      render.Renderer
	Public        config.Public
	TextProcessor *markdown.TextProcessor
	API           API
	Sessions      *signup.SessionStore
	Institutions  *institution.Cache
	EmailLimiter  signup.Limiter
	Flash         *middleware.Flash
	Static        fs.FS
}

func New(
	renderer render.Renderer,
	publicCfg config.Public,
	textProcessor *markdown.TextProcessor,
	api API,
	sessions *signup.SessionStore,
	institutions *institution.Cache,
	emailLimiter signup.Limiter,
	static fs.FS,
) *Handler {
	return &Handler{
		Renderer:      renderer,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		API:           api,
		Sessions:      sessions,
		Institutions:  institutions,
		EmailLimiter:  emailLimiter,
		Flash:         middleware.NewFlash(publicCfg.SecureCookies),
		Static:        static,
	}
}

func (h *Handler) FaviconHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFileFS(w, r, h.Static, "favicon.svg")
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
