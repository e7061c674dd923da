package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/errors"
	"github.com/openreview/openreview-web/shared/logger"
	"github.com/openreview/openreview-web/shared/utils"
	"github.com/openreview/openreview-web/shared/validation"
)

const defaultPollTimeout = 25 * time.Second

// PostFullnameHandler feeds a keystroke of the name field into the session's lookup.
func (h *Handler) PostFullnameHandler(w http.ResponseWriter, r *http.Request) {
	var body api.FullnameRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeAPIError(w, r, err)
		return
	}

	o, _ := h.session(w, r)
	o.SetFullName(body.Fullname, body.Composing)
	render.JSON(w, r, stateResponse(o.Snapshot()))
}

// GetStateHandler long-polls for a state newer than ?version=.
func (h *Handler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	var version uint64
	if v := r.URL.Query().Get("version"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeAPIError(w, r, &errors.ErrorWithStatusCode{
				Message: "version must be a non-negative integer", StatusCode: http.StatusBadRequest,
			})
			return
		}
		version = parsed
	}

	timeout := h.Public.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	o, _ := h.session(w, r)
	render.JSON(w, r, stateResponse(o.Wait(ctx, version)))
}

// GetNotesHandler returns the recent publications of a candidate profile.
func (h *Handler) GetNotesHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.Validator().Var(id, "required,tildeid"); err != nil {
		writeAPIError(w, r, errors.BadRequest("Invalid profile id"))
		return
	}

	notes, err := h.API.RecentNotes(r.Context(), id, h.recentNotesLimit())
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Str("profile_id", id).Msg("loading recent notes failed")
		writeAPIError(w, r, &errors.ErrorWithStatusCode{
			Message: "Publications are unavailable right now", StatusCode: http.StatusBadGateway,
		})
		return
	}

	resp := api.NotesListResponse{Notes: make([]api.NoteResponse, 0, len(notes))}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, api.NoteResponse{
			Id:      n.Id,
			Forum:   n.Forum,
			Title:   string(h.TextProcessor.RenderTitle(n.Title)),
			Venue:   n.Venue,
			Authors: n.Authors,
			Year:    noteYear(n.Created),
		})
	}
	render.JSON(w, r, resp)
}

// writeAPIError answers the page script in the same error shape the OpenReview API uses.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		status, msg = e.StatusCode, e.Message
	} else {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	}
	render.Status(r, status)
	render.JSON(w, r, api.ErrorResponse{Name: http.StatusText(status), Message: msg, Status: status})
}

func (h *Handler) recentNotesLimit() int {
	if h.Public.RecentNotesLimit > 0 {
		return h.Public.RecentNotesLimit
	}
	return 3
}

func stateResponse(s signup.State) api.SignupStateResponse {
	resp := api.SignupStateResponse{
		Version:       s.Version,
		Fullname:      s.Fullname,
		Username:      s.Username,
		Candidates:    make([]api.CandidateResponse, 0, len(s.Rows)),
		NameConfirmed: s.NameConfirmed,
		Error:         s.Error,
		Message:       s.Message,
		NewProfile: api.NewProfileResponse{
			State:              s.NewProfile.State.String(),
			Email:              s.NewProfile.Email,
			InstitutionWarning: s.NewProfile.InstitutionWarning,
			PasswordVisible:    s.NewProfile.PasswordVisible,
			CanSubmit:          s.NewProfile.CanSubmit,
		},
		Modal: api.ModalResponse{
			State:      s.Modal.State.String(),
			AgreeTerms: s.Modal.AgreeTerms,
			CanConfirm: s.Modal.CanConfirm,
		},
	}
	for _, row := range s.Rows {
		resp.Candidates = append(resp.Candidates, api.CandidateResponse{
			Id:              row.Profile.Id,
			Kind:            row.Kind.String(),
			Action:          row.Action.String(),
			ActionLabel:     row.Action.Label(),
			State:           row.State.String(),
			Open:            row.Open,
			PasswordVisible: row.PasswordVisible,
			NeedsToken:      row.NeedsToken,
			Emails:          row.Profile.Emails,
			CanSubmit:       row.CanSubmit,
		})
	}
	if s.Confirmation != nil {
		resp.Confirmation = &api.ConfirmationResponse{
			Type:            string(s.Confirmation.Type),
			RegisteredEmail: s.Confirmation.RegisteredEmail,
		}
	}
	return resp
}

// noteYear of a millisecond timestamp, 0 when unknown.
func noteYear(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return time.UnixMilli(ms).UTC().Year()
}
