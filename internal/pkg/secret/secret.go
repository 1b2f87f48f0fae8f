// Package secret provides an opaque wrapper for credentials so they cannot
// leak through default formatting, logging, or JSON encoding paths.
package secret

// Secret holds a sensitive string value. Its formatted representations are
// always masked; callers must use Reveal to access the underlying value.
type Secret struct {
	value string
}

const mask = "[REDACTED]"

// New wraps a credential value.
func New(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the underlying credential. Call sites should be the only
// places the raw value escapes, typically a request header.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether no credential was set.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// String implements fmt.Stringer and always returns the mask.
func (s Secret) String() string {
	return mask
}

// GoString masks %#v output as well.
func (s Secret) GoString() string {
	return "secret.Secret(" + mask + ")"
}

// MarshalJSON masks the value in any JSON encoding.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + mask + `"`), nil
}
