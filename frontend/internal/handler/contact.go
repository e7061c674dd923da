package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openreview/openreview-web/frontend/internal/apiclient"
	frontend_domain "github.com/openreview/openreview-web/frontend/internal/domain"
	"github.com/openreview/openreview-web/frontend/internal/turnstile"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/logger"
	"github.com/openreview/openreview-web/shared/validation"
)

const (
	contactPath            = "/contact"
	institutionHelpSubject = "Institution domain request"

	msgContactInvalid      = "Please enter a valid email address, a subject and a message."
	msgContactVerification = "Please complete the verification to send your message."
	msgContactFailed       = "Your message could not be sent. Please try again later."
	msgContactSent         = "Your message has been sent. We will get back to you by email."
)

type contactForm struct {
	From    string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,max=5000"`
}

func (h *Handler) ContactGetHandler(w http.ResponseWriter, r *http.Request) {
	var data frontend_domain.ContactPageData
	if email := h.Flash.PopFeedbackEmail(w, r); email != "" {
		data.From = email
		data.Subject = institutionHelpSubject
		data.Message = "My institution email domain (" + validation.EmailDomain(email) + ") is not recognized. "
	}
	h.renderTemplate(w, r, "contact.html", data)
}

func (h *Handler) ContactPostHandler(w http.ResponseWriter, r *http.Request) {
	form := contactForm{
		From:    strings.TrimSpace(r.PostFormValue("from")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	data := frontend_domain.ContactPageData{From: form.From, Subject: form.Subject, Message: form.Message}

	if err := validation.Struct(form); err != nil {
		h.renderTemplateWithError(w, r, "contact.html", data, msgContactInvalid)
		return
	}

	// the API verifies the token, it is single use
	token := turnstile.FromRequest(r)
	if token == "" {
		h.renderTemplateWithError(w, r, "contact.html", data, msgContactVerification)
		return
	}

	err := h.API.SendFeedback(r.Context(), domain.Feedback{
		From:    form.From,
		Subject: form.Subject,
		Message: form.Message,
		Token:   token,
	})
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("sending feedback failed")
		msg := msgContactFailed
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			msg = apiErr.Message
		}
		h.renderTemplateWithError(w, r, "contact.html", data, msg)
		return
	}

	h.Flash.SetSuccess(w, msgContactSent)
	http.Redirect(w, r, contactPath, http.StatusSeeOther)
}
