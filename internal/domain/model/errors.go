package model

import "errors"

// Error kinds returned by notifiers. Callers distinguish them with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMissingSecret        = errors.New("missing secret")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDeliveryFailure      = errors.New("delivery failure")
)
