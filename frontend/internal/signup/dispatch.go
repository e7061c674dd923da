package signup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openreview/openreview-web/frontend/internal/apiclient"
	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/logger"
)

const (
	msgResetUserNotFound    = "Please enter the email address associated with your profile."
	msgActivateUserNotFound = "There is no profile associated with this email address."
	msgTimeout              = "The request timed out. Please try again."
	msgUnavailable          = "OpenReview is currently unavailable. Please try again later."
	msgUnexpected           = "Something went wrong. Please try again."
	msgRateLimited          = "Too many requests for this email address. Please try again later."
)

// ErrRateLimited is returned instead of calling the API once an address used up its budget.
var ErrRateLimited = errors.New("email rate limit exceeded")

// Limiter caps how many emails the API is asked to send per address.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Dispatcher makes the single API call that finalizes a signup path and turns the answer
// into a confirmation or a notification.
type Dispatcher struct {
	api      AccountAPI
	notifier Notifier
	limiter  Limiter // optional

	// used by RegistrationNew only
	fullname string
	token    domain.Token
}

func NewDispatcher(accounts AccountAPI, notifier Notifier) *Dispatcher {
	return &Dispatcher{api: accounts, notifier: notifier}
}

// WithNewAccount returns a copy that registers new accounts under fullname, gated by the
// Turnstile token taken from the name confirmation.
func (d *Dispatcher) WithNewAccount(fullname string, token domain.Token) *Dispatcher {
	c := *d
	c.fullname = fullname
	c.token = token
	return &c
}

// WithLimiter returns a copy that takes one slot of the address's budget before every
// API call.
func (d *Dispatcher) WithLimiter(l Limiter) *Dispatcher {
	c := *d
	c.limiter = l
	return &c
}

// allow fails open: a broken limiter must not block signups.
func (d *Dispatcher) allow(ctx context.Context, action string, email domain.Email) error {
	if d.limiter == nil {
		return nil
	}
	ok, err := d.limiter.Allow(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("email rate limiter unavailable")
		return nil
	}
	if ok {
		return nil
	}
	dispatchTotal.WithLabelValues(action, "rate_limited").Inc()
	d.notifier.Error(msgRateLimited)
	return ErrRateLimited
}

// RegisterUser creates an account (typ new) or claims the password-less profile id (typ claim).
func (d *Dispatcher) RegisterUser(ctx context.Context, typ domain.RegistrationType, email domain.Email, password domain.Password, id domain.ProfileId) (*domain.SignupConfirmation, error) {
	var req api.RegisterRequest
	switch typ {
	case domain.RegistrationNew:
		req = api.RegisterRequest{
			Email:    email,
			Password: password,
			Fullname: strings.TrimSpace(d.fullname),
			Token:    d.token,
		}
	case domain.RegistrationClaim:
		req = api.RegisterRequest{Id: id, Email: email, Password: password}
	default:
		return nil, fmt.Errorf("%w: unknown registration type %q", ErrInvalidTransition, typ)
	}

	action := "register_" + string(typ)
	if err := d.allow(ctx, action, email); err != nil {
		return nil, err
	}
	resp, err := d.api.Register(ctx, req)
	dispatchTotal.WithLabelValues(action, outcome(err)).Inc()
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("type", string(typ)).Msg("registration failed")
		d.notifier.Error(userMessage(err))
		return nil, err
	}

	registered := resp.RegisteredEmail
	if registered == "" {
		registered = email
	}
	return &domain.SignupConfirmation{Type: domain.ConfirmationRegister, RegisteredEmail: registered}, nil
}

// ResetPassword asks for a password reset email.
func (d *Dispatcher) ResetPassword(ctx context.Context, email domain.Email, token domain.Token) (*domain.SignupConfirmation, error) {
	if err := d.allow(ctx, "reset", email); err != nil {
		return nil, err
	}
	err := d.api.Resettable(ctx, email, token)
	dispatchTotal.WithLabelValues("reset", outcome(err)).Inc()
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("password reset request failed")
		if apiclient.IsUserNotFound(err) {
			d.notifier.Error(msgResetUserNotFound)
		} else {
			d.notifier.Error(userMessage(err))
		}
		return nil, err
	}
	return &domain.SignupConfirmation{Type: domain.ConfirmationReset, RegisteredEmail: email}, nil
}

// SendActivationLink asks for an activation email for an inactive profile.
func (d *Dispatcher) SendActivationLink(ctx context.Context, email domain.Email) (*domain.SignupConfirmation, error) {
	if err := d.allow(ctx, "activate", email); err != nil {
		return nil, err
	}
	err := d.api.Activatable(ctx, email)
	dispatchTotal.WithLabelValues("activate", outcome(err)).Inc()
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("activation link request failed")
		if apiclient.IsUserNotFound(err) {
			d.notifier.Error(msgActivateUserNotFound)
		} else {
			d.notifier.Error(userMessage(err))
		}
		return nil, err
	}
	return &domain.SignupConfirmation{Type: domain.ConfirmationActivate, RegisteredEmail: email}, nil
}

// userMessage picks what the notifier shows for err.
func userMessage(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, apiclient.ErrTimeout):
		return msgTimeout
	case errors.Is(err, apiclient.ErrUnavailable):
		return msgUnavailable
	default:
		return msgUnexpected
	}
}
