package api

// Request DTOs

// RegisterRequest covers both registration shapes: new accounts send
// {email, password, fullname, token}, claims send {id, email, password}.
type RegisterRequest struct {
	Id       string `json:"id,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Fullname string `json:"fullname,omitempty"`
	Token    string `json:"token,omitempty"`
}

type ResettableRequest struct {
	Id    string `json:"id" validate:"required,email"`
	Token string `json:"token,omitempty"`
}

type ActivatableRequest struct {
	Id string `json:"id" validate:"required,email"`
}

type FeedbackRequest struct {
	From    string `json:"from" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Token   string `json:"token,omitempty"`
}

// Response DTOs

type RegisterResponse struct {
	Type            string `json:"type,omitempty"`
	RegisteredEmail string `json:"registeredEmail,omitempty"`
}

type ResettableResponse struct {
	Id string `json:"id,omitempty"`
}

// ErrorResponse is the OpenReview API error body.
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
