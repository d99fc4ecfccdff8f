package service

import "errors"

// Business-rule errors shared across services. Not-found and stock errors
// live with the repositories that detect them; retry exhaustion under
// concurrent writers is database.ErrRetriesExhausted.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)
