package api

// DTOs of this server's own /api routes, used by the signup page script

type FullnameRequest struct {
	Fullname  string `json:"fullname" validate:"max=200"`
	Composing bool   `json:"composing,omitempty"`
}

type CandidateResponse struct {
	Id              string   `json:"id"`
	Kind            string   `json:"kind"`
	Action          string   `json:"action"`
	ActionLabel     string   `json:"actionLabel"`
	State           string   `json:"state"`
	Open            bool     `json:"open"`
	PasswordVisible bool     `json:"passwordVisible"`
	NeedsToken      bool     `json:"needsToken"`
	Emails          []string `json:"emails,omitempty"`
	CanSubmit       bool     `json:"canSubmit"`
}

type NewProfileResponse struct {
	State              string `json:"state"`
	Email              string `json:"email,omitempty"`
	InstitutionWarning bool   `json:"institutionWarning"`
	PasswordVisible    bool   `json:"passwordVisible"`
	CanSubmit          bool   `json:"canSubmit"`
}

type ModalResponse struct {
	State      string `json:"state"`
	AgreeTerms bool   `json:"agreeTerms"`
	CanConfirm bool   `json:"canConfirm"`
}

type ConfirmationResponse struct {
	Type            string `json:"type"`
	RegisteredEmail string `json:"registeredEmail"`
}

type SignupStateResponse struct {
	Version       uint64                `json:"version"`
	Fullname      string                `json:"fullname"`
	Username      string                `json:"username"`
	Candidates    []CandidateResponse   `json:"candidates"`
	NewProfile    NewProfileResponse    `json:"newProfile"`
	Modal         ModalResponse         `json:"modal"`
	NameConfirmed bool                  `json:"nameConfirmed"`
	Error         string                `json:"error,omitempty"`
	Message       string                `json:"message,omitempty"`
	Confirmation  *ConfirmationResponse `json:"confirmation,omitempty"`
}

// NoteResponse is a publication preview. Title is sanitized HTML.
type NoteResponse struct {
	Id      string   `json:"id"`
	Forum   string   `json:"forum"`
	Title   string   `json:"title"`
	Venue   string   `json:"venue,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
}

type NotesListResponse struct {
	Notes []NoteResponse `json:"notes"`
}
