package apiclient

import (
	"context"

	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/domain"
)

// Register creates a new account or claims an existing password-less profile,
// depending on which fields of req are set.
func (c *APIClient) Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.postJSON(ctx, "/register", req, &resp); err != nil {
		return api.RegisterResponse{}, err
	}
	return resp, nil
}

// Resettable asks the API to email a password reset link to the profile owning email.
func (c *APIClient) Resettable(ctx context.Context, email domain.Email, token domain.Token) error {
	return c.postJSON(ctx, "/resettable", api.ResettableRequest{Id: email, Token: token}, nil)
}

// Activatable asks the API to email an activation link to the profile owning email.
func (c *APIClient) Activatable(ctx context.Context, email domain.Email) error {
	return c.postJSON(ctx, "/activatable", api.ActivatableRequest{Id: email}, nil)
}

// SendFeedback posts the contact form.
func (c *APIClient) SendFeedback(ctx context.Context, feedback domain.Feedback) error {
	req := api.FeedbackRequest{
		From:    feedback.From,
		Subject: feedback.Subject,
		Message: feedback.Message,
		Token:   feedback.Token,
	}
	return c.postJSON(ctx, "/feedback", req, nil)
}
