package domain

// CandidateProfile is a profile returned by the name search. Emails are obfuscated by the
// API (e.g. "j***@mit.edu") unless the caller owns them.
type CandidateProfile struct {
	Id              ProfileId
	Emails          []Email
	EmailsConfirmed []Email
	Active          bool
	Password        bool
}

// HasEmails decides between the existing-profile and claim-profile paths.
func (p CandidateProfile) HasEmails() bool {
	return len(p.Emails) > 0
}

type Note struct {
	Id       string
	Forum    string
	Title    string
	Venue    string
	Authors  []string
	Created  int64 // ms since epoch, as sent by the API
	Abstract string
}
