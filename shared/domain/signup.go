package domain

type ConfirmationType string

const (
	ConfirmationRegister ConfirmationType = "register"
	ConfirmationReset    ConfirmationType = "reset"
	ConfirmationActivate ConfirmationType = "activate"
)

// SignupConfirmation is the terminal state of every signup path. Once set it replaces
// the form tree.
type SignupConfirmation struct {
	Type            ConfirmationType
	RegisteredEmail Email
}

type RegistrationType string

const (
	RegistrationNew   RegistrationType = "new"
	RegistrationClaim RegistrationType = "claim"
)

type Feedback struct {
	From    Email
	Subject string
	Message string
	Token   Token
}
