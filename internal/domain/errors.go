package domain

import "errors"

// Sentinel errors forming the error taxonomy of the marketplace core.
// Callers classify failures with errors.Is; messages wrapped around these
// sentinels name the precondition that failed.
var (
	// ErrValidation marks malformed input (non-positive amount, empty
	// required text). Nothing is written before validation passes.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a Task/Bid/Notification that does
	// not exist, typically a stale cached id.
	ErrNotFound = errors.New("not found")

	// ErrPermission marks a requester that is not the owning or
	// authorized actor. Never retried with the same actor.
	ErrPermission = errors.New("not authorized")

	// ErrInvalidState marks a lifecycle precondition failure (task not
	// open, bid not pending, already settled). This is the expected
	// outcome of legitimate races and carries an actionable message.
	ErrInvalidState = errors.New("invalid state")

	// ErrTransientStore marks a network or store failure during an
	// otherwise valid operation. Safe to retry a bounded number of times.
	ErrTransientStore = errors.New("transient store failure")
)
