package logger

import (
	"errors"
	"strings"
)

// ErrChain renders an error and its full cause chain on one line, walking
// errors.Unwrap: "store token: caused by: pq: connection reset".
// Unexpected errors should be logged with this so the original driver or
// transport failure is preserved alongside each wrapping context.
func ErrChain(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		b.WriteString(" | caused by: ")
		b.WriteString(cause.Error())
	}
	return b.String()
}
