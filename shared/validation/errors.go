package validation

import "errors"

// ErrInvalidInput wraps every error produced by Struct
var ErrInvalidInput = errors.New("invalid input")
