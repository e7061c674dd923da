package signup

import (
	"github.com/openreview/openreview-web/frontend/internal/turnstile"
)

type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
	ModalConfirmed
)

func (s ModalState) String() string {
	switch s {
	case ModalOpen:
		return "open"
	case ModalConfirmed:
		return "confirmed"
	default:
		return "closed"
	}
}

// ConfirmNameModal asks a new user to confirm the name the account is created under.
// The primary action needs both the terms checkbox and a Turnstile token.
//
// It is not safe for concurrent use; the owner serializes access.
type ConfirmNameModal struct {
	state      ModalState
	agreeTerms bool
	token      turnstile.Token
	onConfirm  func(token string)
}

func NewConfirmNameModal(onConfirm func(token string)) *ConfirmNameModal {
	return &ConfirmNameModal{onConfirm: onConfirm}
}

func (m *ConfirmNameModal) State() ModalState { return m.state }
func (m *ConfirmNameModal) AgreeTerms() bool  { return m.agreeTerms }

// Open shows the modal. Opening an open modal does nothing.
func (m *ConfirmNameModal) Open() {
	if m.state == ModalClosed {
		m.state = ModalOpen
	}
}

func (m *ConfirmNameModal) SetAgreeTerms(agree bool) {
	if m.state == ModalOpen {
		m.agreeTerms = agree
	}
}

func (m *ConfirmNameModal) SetToken(token string) {
	if m.state == ModalOpen {
		m.token.Set(token)
	}
}

// CanConfirm is the enabled state of the primary action.
func (m *ConfirmNameModal) CanConfirm() bool {
	return m.state == ModalOpen && m.agreeTerms && m.token.Present()
}

// Confirm fires onConfirm with the token exactly once and closes the modal.
func (m *ConfirmNameModal) Confirm() error {
	if !m.CanConfirm() {
		return ErrInvalidTransition
	}
	m.state = ModalConfirmed
	token := m.token.Value()
	if m.onConfirm != nil {
		m.onConfirm(token)
	}
	m.Close()
	return nil
}

// Close hides the modal; the checkbox is cleared and the token is spent.
func (m *ConfirmNameModal) Close() {
	m.state = ModalClosed
	m.agreeTerms = false
	m.token.Invalidate()
}
