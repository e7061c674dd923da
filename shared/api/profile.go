package api

type TildeUsernameResponse struct {
	Username string `json:"username"`
}

type ProfileContent struct {
	Emails          []string `json:"emails"`
	EmailsConfirmed []string `json:"emailsConfirmed"`
	PreferredEmail  string   `json:"preferredEmail,omitempty"`
}

type Profile struct {
	Id       string         `json:"id"`
	Active   bool           `json:"active"`
	Password bool           `json:"password"`
	Content  ProfileContent `json:"content"`
}

type ProfileSearchResponse struct {
	Profiles []Profile `json:"profiles"`
	Count    int       `json:"count"`
}

type InstitutionDomainsResponse []string
