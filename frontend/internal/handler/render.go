package handler

import (
	"net/http"

	frontend_domain "github.com/openreview/openreview-web/frontend/internal/domain"
	"github.com/openreview/openreview-web/frontend/internal/middleware"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/frontend/internal/turnstile"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/logger"
	mw "github.com/openreview/openreview-web/shared/middleware"
	"github.com/openreview/openreview-web/shared/validation"
)

const (
	feedbackMessageMax = 5000
	abstractPreviewLen = 300
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

// notices overrides the flash messages of the common data when set.
type notices struct {
	Error   string
	Success string
	Status  int
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		Error:     h.Flash.PopError(w, r),
		Success:   h.Flash.PopSuccess(w, r),
		UserID:    mw.GetUserIDFromContext(r),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Turnstile: turnstile.Widget{SiteKey: h.Public.TurnstileSiteKey},
		Validation: frontend_domain.ValidationData{
			PasswordMinLen:      validation.PasswordMinLen,
			PasswordMaxLen:      validation.PasswordMaxLen,
			ProfileSearchMinLen: signup.ProfileSearchMinLength,
			FeedbackMessageMax:  feedbackMessageMax,
		},
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithNotices(w, r, name, data, notices{})
}

func (h *Handler) renderTemplateWithError(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	h.renderTemplateWithNotices(w, r, name, data, notices{Error: errMsg})
}

func (h *Handler) renderTemplateWithNotices(w http.ResponseWriter, r *http.Request, name string, data any, n notices) {
	common := h.initCommonTemplateData(w, r)
	if n.Error != "" {
		common.Error = n.Error
	}
	if n.Success != "" {
		common.Success = n.Success
	}

	out, err := h.Renderer.Render(name, TemplateData{Data: data, Common: common})
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("error executing template")
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if n.Status != 0 {
		w.WriteHeader(n.Status)
	}
	_, _ = w.Write([]byte(out))
}

// noteViews renders publication previews through the markdown pipeline.
func (h *Handler) noteViews(notes []domain.Note) []frontend_domain.NoteView {
	views := make([]frontend_domain.NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, frontend_domain.NoteView{
			Id:       n.Id,
			Forum:    n.Forum,
			Title:    h.TextProcessor.RenderTitle(n.Title),
			Abstract: h.TextProcessor.RenderAbstract(n.Abstract, abstractPreviewLen),
			Venue:    n.Venue,
			Authors:  n.Authors,
			Year:     noteYear(n.Created),
		})
	}
	return views
}
