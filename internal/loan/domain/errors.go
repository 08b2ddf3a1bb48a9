package domain

import "errors"

var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrInvalidState = errors.New("invalid loan state for this transition")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
)
