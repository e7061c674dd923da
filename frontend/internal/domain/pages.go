package frontend_domain

import (
	"html/template"

	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/shared/domain"
)

// NoteView is a publication preview with its title rendered through the markdown pipeline.
type NoteView struct {
	Id       string
	Forum    string
	Title    template.HTML
	Abstract template.HTML
	Venue    string
	Authors  []string
	Year     int
}

// RowData is one candidate profile on the signup page.
type RowData struct {
	signup.RowView
	Publications []NoteView
}

type SignupPageData struct {
	State signup.State
	Rows  []RowData
	// shown once the name is long enough to search
	Searched bool
}

type ConfirmationPageData struct {
	Confirmation domain.SignupConfirmation
}

type ResetPageData struct {
	Email        string
	Confirmation *domain.SignupConfirmation
}

type ContactPageData struct {
	From    string
	Subject string
	Message string
}
