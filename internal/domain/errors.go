package domain

import "errors"

var (
	// ErrValidation signals malformed input: empty interest text with no history,
	// a malformed identity, or an unparseable request payload. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrNoCategoryMatch signals that neither the classifier nor the keyword
	// fallback could resolve any category from the interest text.
	ErrNoCategoryMatch = errors.New("no category match")
	// ErrEmptyResultSet signals that categories resolved but no catalog item
	// survived filtering.
	ErrEmptyResultSet = errors.New("empty result set")
	// ErrGuestNotFound signals a preference lookup for an unknown identity.
	ErrGuestNotFound = errors.New("guest not found")
	// ErrVenueNotFound signals an unknown venue id.
	ErrVenueNotFound = errors.New("venue not found")
	// ErrClassifierUnavailable signals a classification capability failure or
	// timeout. Recovered internally via keyword fallback, never surfaced.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	// ErrPublication signals a failed result-envelope write. Logged only; the
	// synchronous caller already has its answer.
	ErrPublication = errors.New("publication failed")
)
