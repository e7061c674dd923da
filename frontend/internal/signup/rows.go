package signup

import (
	"github.com/openreview/openreview-web/shared/domain"
)

type FormKind int

const (
	KindExisting FormKind = iota
	KindClaim
)

func (k FormKind) String() string {
	if k == KindClaim {
		return "claim"
	}
	return "existing"
}

// FormKindFor picks the leaf form rendered under a candidate profile.
func FormKindFor(p domain.CandidateProfile) FormKind {
	if p.HasEmails() {
		return KindExisting
	}
	return KindClaim
}

// Row is one candidate profile in the signup list with its form.
type Row struct {
	Profile  domain.CandidateProfile
	Kind     FormKind
	Existing *ExistingProfileForm
	Claim    *ClaimProfileForm
	Notes    []domain.Note

	open bool
}

func newRow(p domain.CandidateProfile) *Row {
	r := &Row{Profile: p, Kind: FormKindFor(p)}
	if r.Kind == KindExisting {
		r.Existing = NewExistingProfileForm(p)
	} else {
		r.Claim = NewClaimProfileForm(p)
	}
	return r
}

// IsOpen reports whether this row is the one taking input.
func (r *Row) IsOpen() bool { return r.open }

// PasswordVisible is true only for the open row once its form reveals the password fields.
func (r *Row) PasswordVisible() bool {
	if !r.open {
		return false
	}
	if r.Kind == KindExisting {
		return r.Existing.PasswordVisible()
	}
	return r.Claim.PasswordVisible()
}

func (r *Row) collapse() {
	r.open = false
	if r.Existing != nil {
		r.Existing.Reset()
	}
	if r.Claim != nil {
		r.Claim.Reset()
	}
}

// Rows keeps the candidate list and lets at most one row be open at a time.
// It is not safe for concurrent use.
type Rows struct {
	rows []*Row
}

func NewRows(profiles []domain.CandidateProfile) *Rows {
	rs := &Rows{rows: make([]*Row, 0, len(profiles))}
	for _, p := range profiles {
		rs.rows = append(rs.rows, newRow(p))
	}
	return rs
}

func (rs *Rows) All() []*Row {
	if rs == nil {
		return nil
	}
	return rs.rows
}

func (rs *Rows) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rows)
}

func (rs *Rows) Find(id domain.ProfileId) *Row {
	for _, r := range rs.All() {
		if r.Profile.Id == id {
			return r
		}
	}
	return nil
}

// Open makes id the open row and collapses every other one.
func (rs *Rows) Open(id domain.ProfileId) (*Row, bool) {
	target := rs.Find(id)
	if target == nil {
		return nil, false
	}
	for _, r := range rs.rows {
		if r != target && r.open {
			r.collapse()
		}
	}
	target.open = true
	return target, true
}

// CloseAll collapses every row, e.g. when the user switches to the new profile form.
func (rs *Rows) CloseAll() {
	for _, r := range rs.All() {
		if r.open {
			r.collapse()
		}
	}
}

func (rs *Rows) OpenRow() *Row {
	for _, r := range rs.All() {
		if r.open {
			return r
		}
	}
	return nil
}
