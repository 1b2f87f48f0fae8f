package subscription

import "errors"

// ErrTokenNotFound is returned by Store.FindSubscriberIDByToken when the
// token was never issued. Tokens are never deleted, so a miss strictly means
// "never issued", not "expired".
var ErrTokenNotFound = errors.New("subscription token not found")

// Kind classifies service errors for the boundary layer. Callers switch on
// Kind to pick a response; they never inspect the wrapped cause.
type Kind int

const (
	// KindValidation marks malformed input rejected before any storage access.
	KindValidation Kind = iota
	// KindUnauthorized marks an unrecognized confirmation token.
	KindUnauthorized
	// KindUnexpected marks any storage, dispatch, or transaction failure.
	KindUnexpected
)

// Error is the only error type returned by Service operations. It carries a
// classification for the boundary layer and optionally wraps the lower-level
// cause for diagnostic chaining.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func validation(msg string, cause error) *Error {
	return &Error{Kind: KindValidation, msg: msg, err: cause}
}

func unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, msg: "subscription token not recognized"}
}

func unexpected(msg string, cause error) *Error {
	return &Error{Kind: KindUnexpected, msg: msg, err: cause}
}
