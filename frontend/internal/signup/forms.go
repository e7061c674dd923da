package signup

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/openreview/openreview-web/frontend/internal/turnstile"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/validation"
)

var (
	ErrSubmitInProgress  = errors.New("submit already in progress")
	ErrInvalidTransition = errors.New("form is not ready for this step")
)

// FormState is the progressive disclosure state of a leaf form.
type FormState int

const (
	Collecting FormState = iota
	EmailEntered
	PasswordEntered
	Submitting
	Done
)

func (s FormState) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case EmailEntered:
		return "email_entered"
	case PasswordEntered:
		return "password_entered"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Editable reports whether the form accepts input.
func (s FormState) Editable() bool {
	return s != Submitting && s != Done
}

// formCore holds what every leaf form shares: its state, its lock and its Turnstile token.
type formCore struct {
	mu    sync.Mutex
	state FormState
	token turnstile.Token
}

func (c *formCore) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// begin moves to Submitting. Caller holds mu.
func (c *formCore) begin(ready bool) error {
	switch {
	case c.state == Submitting:
		return ErrSubmitInProgress
	case c.state == Done || !ready:
		return ErrInvalidTransition
	}
	c.state = Submitting
	return nil
}

// finish leaves Submitting. The token is spent either way; on failure the form becomes
// editable again with its input kept. Caller holds mu.
func (c *formCore) finish(err error, refresh func()) {
	c.token.Invalidate()
	if err != nil {
		c.state = Collecting
		refresh()
		return
	}
	c.state = Done
}

// ExistingAction is what submitting an ExistingProfileForm does.
type ExistingAction int

const (
	ActionClaim ExistingAction = iota
	ActionReset
	ActionActivate
)

// ActionFor picks the action from the profile state.
func ActionFor(p domain.CandidateProfile) ExistingAction {
	switch {
	case p.Password && p.Active:
		return ActionReset
	case p.Password:
		return ActionActivate
	default:
		return ActionClaim
	}
}

func (a ExistingAction) String() string {
	switch a {
	case ActionReset:
		return "reset"
	case ActionActivate:
		return "activate"
	default:
		return "claim"
	}
}

// Label is the submit button text.
func (a ExistingAction) Label() string {
	switch a {
	case ActionReset:
		return "Reset Password"
	case ActionActivate:
		return "Send Activation Link"
	default:
		return "Claim Profile"
	}
}

// MatchesObfuscated reports whether email can be the address behind one of the masked
// emails the search API returns, e.g. "j***@mit.edu": same domain, local part starting with
// the visible prefix. The stars are a fixed-width mask and say nothing about the length.
// An unmasked entry must match exactly. An empty list matches anything.
func MatchesObfuscated(email string, obfuscated []string) bool {
	if len(obfuscated) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	local, domainPart := email[:at], email[at+1:]

	for _, masked := range obfuscated {
		masked = strings.ToLower(strings.TrimSpace(masked))
		mat := strings.LastIndex(masked, "@")
		if mat < 0 {
			continue
		}
		if !strings.Contains(masked, "*") {
			if masked == email {
				return true
			}
			continue
		}
		if masked[mat+1:] != domainPart {
			continue
		}
		prefix := strings.TrimRight(masked[:mat], "*")
		if strings.HasPrefix(local, prefix) {
			return true
		}
	}
	return false
}

// ExistingProfileForm is shown under a candidate profile that has emails. Depending on the
// profile it resets the password, sends an activation link or claims the profile.
type ExistingProfileForm struct {
	formCore
	profile  domain.CandidateProfile
	action   ExistingAction
	email    string
	password string
	confirm  string
}

func NewExistingProfileForm(p domain.CandidateProfile) *ExistingProfileForm {
	return &ExistingProfileForm{profile: p, action: ActionFor(p)}
}

func (f *ExistingProfileForm) Profile() domain.CandidateProfile { return f.profile }
func (f *ExistingProfileForm) Action() ExistingAction           { return f.action }

func (f *ExistingProfileForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *ExistingProfileForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.email = strings.TrimSpace(email)
	f.refresh()
}

func (f *ExistingProfileForm) SetPassword(password, confirm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.password, f.confirm = password, confirm
	f.refresh()
}

func (f *ExistingProfileForm) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token.Set(token)
}

// EmailMatches reports whether the entered email fits one of the profile's emails.
func (f *ExistingProfileForm) EmailMatches() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emailOK()
}

func (f *ExistingProfileForm) emailOK() bool {
	return validation.IsValidEmail(f.email) && MatchesObfuscated(f.email, f.profile.Emails)
}

func (f *ExistingProfileForm) refresh() {
	switch {
	case !f.emailOK():
		f.state = Collecting
	case f.action == ActionClaim && validation.IsValidPassword(f.password, f.confirm):
		f.state = PasswordEntered
	default:
		f.state = EmailEntered
	}
}

// PasswordVisible is true once a claim has a matching email.
func (f *ExistingProfileForm) PasswordVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.action == ActionClaim && f.state != Collecting
}

// NeedsToken reports whether the Turnstile widget is shown with this form.
func (f *ExistingProfileForm) NeedsToken() bool {
	return f.action == ActionReset
}

func (f *ExistingProfileForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready()
}

func (f *ExistingProfileForm) ready() bool {
	switch f.action {
	case ActionReset:
		return f.state == EmailEntered && f.token.Present()
	case ActionActivate:
		return f.state == EmailEntered
	default:
		return f.state == PasswordEntered
	}
}

// Reset clears the input and hides the password fields again.
func (f *ExistingProfileForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.email, f.password, f.confirm = "", "", ""
	f.token.Invalidate()
	f.state = Collecting
}

func (f *ExistingProfileForm) Submit(ctx context.Context, d *Dispatcher) (*domain.SignupConfirmation, error) {
	f.mu.Lock()
	if err := f.begin(f.ready()); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	email, password, token := f.email, f.password, f.token.Value()
	f.mu.Unlock()

	var conf *domain.SignupConfirmation
	var err error
	switch f.action {
	case ActionReset:
		conf, err = d.ResetPassword(ctx, email, token)
	case ActionActivate:
		conf, err = d.SendActivationLink(ctx, email)
	default:
		conf, err = d.RegisterUser(ctx, domain.RegistrationClaim, email, password, f.profile.Id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finish(err, f.refresh)
	return conf, err
}

// ClaimProfileForm is shown under a candidate profile without emails: the user proves
// nothing up front and sets an email and password for the profile.
type ClaimProfileForm struct {
	formCore
	profile  domain.CandidateProfile
	email    string
	password string
	confirm  string
}

func NewClaimProfileForm(p domain.CandidateProfile) *ClaimProfileForm {
	return &ClaimProfileForm{profile: p}
}

func (f *ClaimProfileForm) Profile() domain.CandidateProfile { return f.profile }

func (f *ClaimProfileForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *ClaimProfileForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.email = strings.TrimSpace(email)
	f.refresh()
}

func (f *ClaimProfileForm) SetPassword(password, confirm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.password, f.confirm = password, confirm
	f.refresh()
}

func (f *ClaimProfileForm) refresh() {
	switch {
	case !validation.IsValidEmail(f.email):
		f.state = Collecting
	case validation.IsValidPassword(f.password, f.confirm):
		f.state = PasswordEntered
	default:
		f.state = EmailEntered
	}
}

func (f *ClaimProfileForm) PasswordVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != Collecting
}

func (f *ClaimProfileForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == PasswordEntered
}

func (f *ClaimProfileForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.email, f.password, f.confirm = "", "", ""
	f.state = Collecting
}

func (f *ClaimProfileForm) Submit(ctx context.Context, d *Dispatcher) (*domain.SignupConfirmation, error) {
	f.mu.Lock()
	if err := f.begin(f.state == PasswordEntered); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	email, password := f.email, f.password
	f.mu.Unlock()

	conf, err := d.RegisterUser(ctx, domain.RegistrationClaim, email, password, f.profile.Id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finish(err, f.refresh)
	return conf, err
}

// NewProfileForm collects the credentials of a brand new account. The zero value is
// ready to use; without institution domains no warning is ever shown.
type NewProfileForm struct {
	formCore
	email              string
	password           string
	confirm            string
	domains            []string
	institutionWarning bool
}

func (f *NewProfileForm) SetInstitutionDomains(domains []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains = domains
	f.checkInstitution()
}

func (f *NewProfileForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *NewProfileForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.email = strings.TrimSpace(email)
	f.checkInstitution()
	f.refresh()
}

func (f *NewProfileForm) SetPassword(password, confirm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.password, f.confirm = password, confirm
	f.refresh()
}

// the warning never blocks: it does not take part in refresh
func (f *NewProfileForm) checkInstitution() {
	f.institutionWarning = len(f.domains) > 0 &&
		validation.IsValidEmail(f.email) &&
		!validation.IsInstitutionEmail(f.email, f.domains)
}

// InstitutionWarning is set while a valid email is outside every allow-listed domain.
func (f *NewProfileForm) InstitutionWarning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.institutionWarning
}

func (f *NewProfileForm) refresh() {
	switch {
	case !validation.IsValidEmail(f.email):
		f.state = Collecting
	case validation.IsValidPassword(f.password, f.confirm):
		f.state = PasswordEntered
	default:
		f.state = EmailEntered
	}
}

func (f *NewProfileForm) PasswordVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state != Collecting
}

// CanSubmit reports whether the name confirmation can be opened.
func (f *NewProfileForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == PasswordEntered
}

func (f *NewProfileForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return
	}
	f.email, f.password, f.confirm = "", "", ""
	f.institutionWarning = false
	f.state = Collecting
}

// Submit registers the account. d must carry the confirmed name and token, see
// Dispatcher.WithNewAccount.
func (f *NewProfileForm) Submit(ctx context.Context, d *Dispatcher) (*domain.SignupConfirmation, error) {
	f.mu.Lock()
	if err := f.begin(f.state == PasswordEntered); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	email, password := f.email, f.password
	f.mu.Unlock()

	conf, err := d.RegisterUser(ctx, domain.RegistrationNew, email, password, "")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finish(err, f.refresh)
	return conf, err
}

// ResetForm is the form of the reset page: an email and a Turnstile token.
type ResetForm struct {
	formCore
	email string
}

func (f *ResetForm) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

func (f *ResetForm) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Editable() {
		return
	}
	f.email = strings.TrimSpace(email)
	f.refresh()
}

func (f *ResetForm) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token.Set(token)
}

func (f *ResetForm) refresh() {
	if validation.IsValidEmail(f.email) {
		f.state = EmailEntered
	} else {
		f.state = Collecting
	}
}

func (f *ResetForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == EmailEntered && f.token.Present()
}

func (f *ResetForm) Submit(ctx context.Context, d *Dispatcher) (*domain.SignupConfirmation, error) {
	f.mu.Lock()
	if err := f.begin(f.state == EmailEntered && f.token.Present()); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	email, token := f.email, f.token.Value()
	f.mu.Unlock()

	conf, err := d.ResetPassword(ctx, email, token)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finish(err, f.refresh)
	return conf, err
}
