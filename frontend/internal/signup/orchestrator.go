package signup

import (
	"context"
	"errors"
	"sync"

	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/logger"
)

var ErrUnknownProfile = errors.New("profile is not in the candidate list")

const (
	msgFullnameRequired = "Please enter your full name before creating a new profile."
	recentNotesLimit    = 3
)

// NotesFinder loads the recent publications shown under a claimable profile.
type NotesFinder interface {
	RecentNotes(ctx context.Context, profileId domain.ProfileId, limit int) ([]domain.Note, error)
}

type Deps struct {
	Finder   ProfileFinder
	Accounts AccountAPI
	Notes    NotesFinder // optional
	// Notifier also receives every message; may be nil
	Notifier Notifier
	Lookup   LookupConfig
	// EmailLimiter may be nil
	EmailLimiter Limiter
	// InstitutionDomains may be nil, the institution warning is then never shown
	InstitutionDomains []string
}

// Credentials is one submission of a leaf form.
type Credentials struct {
	Email    string
	Password string
	Confirm  string
	Token    string
}

// Orchestrator is the signup form without its markup: it owns the full name, the lookups,
// the candidate rows, the new profile form and the name confirmation, and ends in a
// SignupConfirmation.
//
// Lock order: NameLookup.mu, then Orchestrator.mu, then a form's mu.
type Orchestrator struct {
	dispatcher *Dispatcher
	lookup     *NameLookup
	notes      NotesFinder
	forward    Notifier

	mu            sync.Mutex
	version       uint64
	changed       chan struct{}
	fullname      string
	username      domain.Username
	rows          *Rows
	newProfile    *NewProfileForm
	modal         *ConfirmNameModal
	nameConfirmed bool
	pendingToken  string
	lastError     string
	lastMessage   string
	confirmation  *domain.SignupConfirmation
}

// NewOrchestrator builds an orchestrator whose debounced lookups run under ctx.
func NewOrchestrator(ctx context.Context, deps Deps) *Orchestrator {
	o := &Orchestrator{
		notes:      deps.Notes,
		forward:    deps.Notifier,
		changed:    make(chan struct{}),
		rows:       NewRows(nil),
		newProfile: &NewProfileForm{},
	}
	o.newProfile.SetInstitutionDomains(deps.InstitutionDomains)
	// runs under o.mu, see ConfirmName
	o.modal = NewConfirmNameModal(func(token string) {
		o.nameConfirmed = true
		o.pendingToken = token
	})
	o.dispatcher = NewDispatcher(deps.Accounts, o).WithLimiter(deps.EmailLimiter)
	o.lookup = NewNameLookup(ctx, deps.Finder, o, deps.Lookup, o.setUsername, o.setProfiles)
	return o
}

func (o *Orchestrator) Error(msg string) {
	o.mu.Lock()
	o.lastError = msg
	o.bumpLocked()
	o.mu.Unlock()
	if o.forward != nil {
		o.forward.Error(msg)
	}
}

func (o *Orchestrator) Message(msg string) {
	o.mu.Lock()
	o.lastMessage = msg
	o.bumpLocked()
	o.mu.Unlock()
	if o.forward != nil {
		o.forward.Message(msg)
	}
}

// bumpLocked publishes a new version and wakes every waiter. Caller holds mu.
func (o *Orchestrator) bumpLocked() {
	o.version++
	close(o.changed)
	o.changed = make(chan struct{})
}

func (o *Orchestrator) bump() {
	o.mu.Lock()
	o.bumpLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) clearNotices() {
	o.mu.Lock()
	o.lastError, o.lastMessage = "", ""
	o.mu.Unlock()
}

// SetFullName feeds a keystroke of the full name field into the debounced lookups.
func (o *Orchestrator) SetFullName(fullname string, composing bool) {
	o.clearNotices()
	o.lookup.Update(fullname, composing)
}

// LookupNow looks the name up without debouncing and returns when both answers are in.
func (o *Orchestrator) LookupNow(ctx context.Context, fullname string) {
	o.clearNotices()
	o.lookup.LookupNow(ctx, fullname)
}

func (o *Orchestrator) setUsername(fullname string, username domain.Username) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fullname = fullname
	o.username = username
	o.bumpLocked()
}

func (o *Orchestrator) setProfiles(fullname string, profiles []domain.CandidateProfile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fullname = fullname
	o.rows = NewRows(profiles)
	o.bumpLocked()
}

// SetInstitutionDomains replaces the allow-list used by the new profile form.
func (o *Orchestrator) SetInstitutionDomains(domains []string) {
	o.newProfile.SetInstitutionDomains(domains)
}

func (o *Orchestrator) openRow(id domain.ProfileId, kind FormKind) (*Row, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.confirmation != nil {
		return nil, ErrInvalidTransition
	}
	row, ok := o.rows.Open(id)
	if !ok {
		return nil, ErrUnknownProfile
	}
	if row.Kind != kind {
		return nil, ErrInvalidTransition
	}
	o.modal.Close()
	o.bumpLocked()
	return row, nil
}

func (o *Orchestrator) settle(conf *domain.SignupConfirmation, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.bumpLocked()
		return err
	}
	o.confirmation = conf
	o.bumpLocked()
	return nil
}

// SubmitExisting feeds input to the form of an existing profile row and submits it once
// it is complete. An incomplete form only advances its state.
func (o *Orchestrator) SubmitExisting(ctx context.Context, id domain.ProfileId, in Credentials) (*domain.SignupConfirmation, error) {
	o.clearNotices()
	row, err := o.openRow(id, KindExisting)
	if err != nil {
		return nil, err
	}
	form := row.Existing
	form.SetEmail(in.Email)
	form.SetPassword(in.Password, in.Confirm)
	form.SetToken(in.Token)
	if !form.CanSubmit() {
		o.bump()
		return nil, nil
	}

	logger.Ctx(ctx).Info().Str("profile", id).Str("action", form.Action().String()).Msg("submitting existing profile form")
	conf, err := form.Submit(ctx, o.dispatcher)
	return conf, o.settle(conf, err)
}

// SubmitClaim is SubmitExisting for a profile without emails. Opening the row loads its
// recent publications once.
func (o *Orchestrator) SubmitClaim(ctx context.Context, id domain.ProfileId, in Credentials) (*domain.SignupConfirmation, error) {
	o.clearNotices()
	row, err := o.openRow(id, KindClaim)
	if err != nil {
		return nil, err
	}
	o.loadNotes(ctx, row)

	form := row.Claim
	form.SetEmail(in.Email)
	form.SetPassword(in.Password, in.Confirm)
	if !form.CanSubmit() {
		o.bump()
		return nil, nil
	}

	logger.Ctx(ctx).Info().Str("profile", id).Msg("submitting claim profile form")
	conf, err := form.Submit(ctx, o.dispatcher)
	return conf, o.settle(conf, err)
}

// publications are a preview: failures leave the list empty
func (o *Orchestrator) loadNotes(ctx context.Context, row *Row) {
	o.mu.Lock()
	loaded := row.Notes != nil
	o.mu.Unlock()
	if o.notes == nil || loaded {
		return
	}

	notes, err := o.notes.RecentNotes(ctx, row.Profile.Id, recentNotesLimit)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Str("profile", row.Profile.Id).Msg("recent notes failed")
		notes = []domain.Note{}
	}
	o.mu.Lock()
	row.Notes = notes
	o.bumpLocked()
	o.mu.Unlock()
}

// SubmitNew feeds input to the new profile form. A complete form opens the name
// confirmation; the account is created by ConfirmName.
func (o *Orchestrator) SubmitNew(ctx context.Context, in Credentials) error {
	o.clearNotices()
	o.mu.Lock()
	if o.confirmation != nil {
		o.mu.Unlock()
		return ErrInvalidTransition
	}
	o.rows.CloseAll()
	fullname := o.fullname
	form := o.newProfile
	o.mu.Unlock()

	form.SetEmail(in.Email)
	form.SetPassword(in.Password, in.Confirm)
	if !form.CanSubmit() {
		o.bump()
		return nil
	}
	if fullname == "" {
		o.Error(msgFullnameRequired)
		return nil
	}

	o.mu.Lock()
	o.modal.Open()
	o.bumpLocked()
	o.mu.Unlock()
	return nil
}

// ConfirmName is the primary action of the name confirmation. It registers the new
// account; on failure the name has to be confirmed again.
func (o *Orchestrator) ConfirmName(ctx context.Context, agreeTerms bool, token string) (*domain.SignupConfirmation, error) {
	o.clearNotices()
	o.mu.Lock()
	o.modal.SetAgreeTerms(agreeTerms)
	o.modal.SetToken(token)
	if err := o.modal.Confirm(); err != nil {
		o.bumpLocked()
		o.mu.Unlock()
		return nil, err
	}
	token = o.pendingToken
	o.pendingToken = ""
	fullname, form := o.fullname, o.newProfile
	o.bumpLocked()
	o.mu.Unlock()

	logger.Ctx(ctx).Info().Str("fullname", fullname).Msg("registering new profile")
	conf, err := form.Submit(ctx, o.dispatcher.WithNewAccount(fullname, token))
	if err != nil {
		o.mu.Lock()
		o.nameConfirmed = false
		o.mu.Unlock()
	}
	return conf, o.settle(conf, err)
}

// CloseModal dismisses the name confirmation without creating anything.
func (o *Orchestrator) CloseModal() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modal.Close()
	o.bumpLocked()
}

func (o *Orchestrator) Confirmation() *domain.SignupConfirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmation
}

// Wait blocks until the state is newer than version or ctx is done, and returns the
// latest state either way.
func (o *Orchestrator) Wait(ctx context.Context, version uint64) State {
	for {
		o.mu.Lock()
		if o.version > version {
			s := o.snapshotLocked()
			o.mu.Unlock()
			return s
		}
		changed := o.changed
		o.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return o.Snapshot()
		}
	}
}

// Stop cancels pending lookups.
func (o *Orchestrator) Stop() {
	o.lookup.Stop()
}
