package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 64
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterValidation("password", validatePassword)
	validate.RegisterValidation("tildeid", validateTildeID)
}

// Validator exposes the shared instance so handlers decode and validate with the same rules.
func Validator() *validator.Validate {
	return validate
}

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return validate.Var(email, "email") == nil
}

// IsValidPassword checks the length and whitespace rules and that both fields match.
func IsValidPassword(password, confirm string) bool {
	return passwordShapeOK(password) && password == confirm
}

func passwordShapeOK(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return false
	}
	first, _ := utf8.DecodeRuneInString(password)
	last, _ := utf8.DecodeLastRuneInString(password)
	return !unicode.IsSpace(first) && !unicode.IsSpace(last)
}

func validatePassword(fl validator.FieldLevel) bool {
	return passwordShapeOK(fl.Field().String())
}

// tilde ids look like ~Jane_Doe1
func validateTildeID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if !strings.HasPrefix(id, "~") || len(id) < 2 {
		return false
	}
	for _, r := range id[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

// EmailDomain returns the lower-cased part after the last "@".
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// IsInstitutionEmail reports whether the email domain, or one of its parent domains,
// is in the allow-list. "cs.mit.edu" matches "mit.edu", "notmit.edu" does not.
func IsInstitutionEmail(email string, domains []string) bool {
	domain := EmailDomain(email)
	if domain == "" {
		return false
	}
	for _, allowed := range domains {
		allowed = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(allowed), "."))
		if allowed == "" {
			continue
		}
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return true
		}
	}
	return false
}

// Struct validates s with the shared instance and flattens field errors into one message.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "password":
		return fmt.Sprintf("%s must be %d to %d characters without leading or trailing spaces", field, PasswordMinLen, PasswordMaxLen)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "tildeid":
		return fmt.Sprintf("%s is not a valid profile id", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
