package handler

import (
	"errors"
	"net/http"
	"strings"

	frontend_domain "github.com/openreview/openreview-web/frontend/internal/domain"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/frontend/internal/turnstile"
)

const msgResetIncomplete = "Please enter a valid email address and complete the verification."

func (h *Handler) ResetGetHandler(w http.ResponseWriter, r *http.Request) {
	data := frontend_domain.ResetPageData{Email: strings.TrimSpace(r.URL.Query().Get("email"))}
	h.renderTemplate(w, r, "reset.html", data)
}

func (h *Handler) ResetPostHandler(w http.ResponseWriter, r *http.Request) {
	form := &signup.ResetForm{}
	form.SetEmail(r.PostFormValue("email"))
	form.SetToken(turnstile.FromRequest(r))

	data := frontend_domain.ResetPageData{Email: form.Email()}
	if !form.CanSubmit() {
		h.renderTemplateWithError(w, r, "reset.html", data, msgResetIncomplete)
		return
	}

	notifier := &signup.Collector{}
	conf, err := form.Submit(r.Context(), signup.NewDispatcher(h.API, notifier).WithLimiter(h.EmailLimiter))
	if err != nil {
		n := notices{Error: notifier.LastError()}
		if errors.Is(err, signup.ErrRateLimited) {
			n.Status = http.StatusTooManyRequests
		}
		h.renderTemplateWithNotices(w, r, "reset.html", data, n)
		return
	}

	data.Confirmation = conf
	h.renderTemplate(w, r, "reset.html", data)
}
