package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	frontend_domain "github.com/openreview/openreview-web/frontend/internal/domain"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/shared/logger"
	"github.com/openreview/openreview-web/shared/validation"
)

const (
	msgProfileGone       = "This profile is no longer in the list. Please search for your name again."
	msgSubmitInProgress  = "Your request is already being processed."
	msgConfirmIncomplete = "Please agree to the terms and complete the verification to continue."
	msgAlreadyConfirmed  = "This signup is already complete."
	signupPath           = "/signup"
)

func (h *Handler) SignupGetHandler(w http.ResponseWriter, r *http.Request) {
	o, id := h.session(w, r)

	if conf := o.Confirmation(); conf != nil {
		h.renderTemplate(w, r, "signup_confirmation.html", frontend_domain.ConfirmationPageData{Confirmation: *conf})
		// reloading the page starts over
		h.endSession(w, id)
		return
	}

	if fullname, ok := r.URL.Query()["fullname"]; ok {
		o.LookupNow(r.Context(), fullname[0])
	}

	state := o.Snapshot()
	h.renderTemplateWithNotices(w, r, "signup.html", h.signupPageData(state), notices{Error: state.Error, Success: state.Message})
}

func (h *Handler) signupPageData(state signup.State) frontend_domain.SignupPageData {
	data := frontend_domain.SignupPageData{
		State:    state,
		Rows:     make([]frontend_domain.RowData, 0, len(state.Rows)),
		Searched: utf8.RuneCountInString(signup.NormalizeName(state.Fullname)) >= signup.ProfileSearchMinLength,
	}
	for _, row := range state.Rows {
		data.Rows = append(data.Rows, frontend_domain.RowData{
			RowView:      row,
			Publications: h.noteViews(row.Notes),
		})
	}
	return data
}

// SignupExistingPostHandler submits the form under a profile that has emails:
// reset, activation or claim depending on the profile.
func (h *Handler) SignupExistingPostHandler(w http.ResponseWriter, r *http.Request) {
	o, _ := h.session(w, r)
	id := strings.TrimSpace(r.PostFormValue("id"))
	_, err := o.SubmitExisting(r.Context(), id, credentialsFromForm(r))
	h.afterSubmit(w, r, err, "")
}

// SignupClaimPostHandler claims a profile without emails.
func (h *Handler) SignupClaimPostHandler(w http.ResponseWriter, r *http.Request) {
	o, _ := h.session(w, r)
	id := strings.TrimSpace(r.PostFormValue("id"))
	_, err := o.SubmitClaim(r.Context(), id, credentialsFromForm(r))
	h.afterSubmit(w, r, err, "")
}

// SignupNewPostHandler drives the new profile form and its name confirmation.
// step is empty for the form itself, "confirm" or "cancel" for the confirmation.
func (h *Handler) SignupNewPostHandler(w http.ResponseWriter, r *http.Request) {
	o, _ := h.session(w, r)
	ctx := r.Context()

	var err error
	invalidMsg := ""
	switch r.PostFormValue("step") {
	case "confirm":
		agree := r.PostFormValue("agree_terms") != ""
		_, err = o.ConfirmName(ctx, agree, credentialsFromForm(r).Token)
		invalidMsg = msgConfirmIncomplete
	case "cancel":
		o.CloseModal()
	default:
		err = o.SubmitNew(ctx, credentialsFromForm(r))
	}
	h.afterSubmit(w, r, err, invalidMsg)
}

// afterSubmit redirects back to the signup page, which renders either the updated forms
// or the confirmation. API failures are already in the session state.
func (h *Handler) afterSubmit(w http.ResponseWriter, r *http.Request, err error, invalidMsg string) {
	switch {
	case err == nil:
	case errors.Is(err, signup.ErrUnknownProfile):
		h.Flash.SetError(w, msgProfileGone)
	case errors.Is(err, signup.ErrSubmitInProgress):
		h.Flash.SetError(w, msgSubmitInProgress)
	case errors.Is(err, signup.ErrInvalidTransition):
		if invalidMsg == "" {
			invalidMsg = msgAlreadyConfirmed
		}
		h.Flash.SetError(w, invalidMsg)
	default:
		logger.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("signup submit failed")
	}
	http.Redirect(w, r, signupPath, http.StatusSeeOther)
}

// InstitutionHelpHandler hands the unrecognized email to the contact page.
func (h *Handler) InstitutionHelpHandler(w http.ResponseWriter, r *http.Request) {
	if email := strings.TrimSpace(r.URL.Query().Get("email")); validation.IsValidEmail(email) {
		h.Flash.SetFeedbackEmail(w, email)
	}
	http.Redirect(w, r, contactPath, http.StatusSeeOther)
}
