package paginator

import "errors"

// Validation errors returned by Start before any message is sent.
var (
	ErrTooFewPages         = errors.New("paginator requires at least two pages")
	ErrStartPageOutOfRange = errors.New("start page is out of range")
	ErrTimeoutTooLong      = errors.New("timeout exceeds the maximum of 15 minutes")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrNilPage             = errors.New("page must not be nil")
	ErrNoInvoker           = errors.New("invoking message must have a channel and an author")
	ErrAlreadyStarted      = errors.New("paginator has already been started")
)
