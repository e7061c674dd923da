package domain

type (
	Email     = string
	Password  = string
	ProfileId = string // tilde id, e.g. ~Jane_Doe1
	Username  = string
	Token     = string
)
