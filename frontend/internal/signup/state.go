package signup

import "github.com/openreview/openreview-web/shared/domain"

// State is a consistent copy of everything the signup page renders.
type State struct {
	Version       uint64
	Fullname      string
	Username      domain.Username
	Rows          []RowView
	NewProfile    NewProfileView
	Modal         ModalView
	NameConfirmed bool
	Error         string
	Message       string
	Confirmation  *domain.SignupConfirmation
}

type RowView struct {
	Profile         domain.CandidateProfile
	Kind            FormKind
	Action          ExistingAction
	State           FormState
	Open            bool
	PasswordVisible bool
	NeedsToken      bool
	Email           string
	EmailMatches    bool
	CanSubmit       bool
	Notes           []domain.Note
}

type NewProfileView struct {
	State              FormState
	Email              string
	InstitutionWarning bool
	PasswordVisible    bool
	CanSubmit          bool
}

type ModalView struct {
	State      ModalState
	Open       bool
	AgreeTerms bool
	CanConfirm bool
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() State {
	s := State{
		Version:       o.version,
		Fullname:      o.fullname,
		Username:      o.username,
		Rows:          make([]RowView, 0, o.rows.Len()),
		NameConfirmed: o.nameConfirmed,
		Error:         o.lastError,
		Message:       o.lastMessage,
		Confirmation:  o.confirmation,
		NewProfile: NewProfileView{
			State:              o.newProfile.State(),
			Email:              o.newProfile.Email(),
			InstitutionWarning: o.newProfile.InstitutionWarning(),
			PasswordVisible:    o.newProfile.PasswordVisible(),
			CanSubmit:          o.newProfile.CanSubmit(),
		},
		Modal: ModalView{
			State:      o.modal.State(),
			Open:       o.modal.State() == ModalOpen,
			AgreeTerms: o.modal.AgreeTerms(),
			CanConfirm: o.modal.CanConfirm(),
		},
	}
	for _, r := range o.rows.All() {
		s.Rows = append(s.Rows, r.view())
	}
	return s
}

func (r *Row) view() RowView {
	v := RowView{
		Profile:         r.Profile,
		Kind:            r.Kind,
		Open:            r.open,
		PasswordVisible: r.PasswordVisible(),
		Notes:           r.Notes,
	}
	if r.Kind == KindExisting {
		v.Action = r.Existing.Action()
		v.State = r.Existing.State()
		v.NeedsToken = r.Existing.NeedsToken()
		v.Email = r.Existing.Email()
		v.EmailMatches = r.Existing.EmailMatches()
		v.CanSubmit = r.Existing.CanSubmit()
	} else {
		v.Action = ActionClaim
		v.State = r.Claim.State()
		v.Email = r.Claim.Email()
		v.CanSubmit = r.Claim.CanSubmit()
	}
	return v
}
