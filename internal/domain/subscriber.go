package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// SubscriberStatus enumerates the states a subscriber can be in.
// The only legal transition is from pending to confirmed.
type SubscriberStatus string

const (
	SubscriberPending   SubscriberStatus = "pending"
	SubscriberConfirmed SubscriberStatus = "confirmed"
)

// Subscriber represents a single mailing-list member.
type Subscriber struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Email        string           `json:"email" db:"email"`
	Status       SubscriberStatus `json:"status" db:"status"`
	SubscribedAt time.Time        `json:"subscribed_at" db:"subscribed_at"`
}

// Validation errors returned by ValidateName and ValidateEmail.
var (
	ErrEmptyName     = errors.New("name must not be empty")
	ErrNameTooLong   = errors.New("name exceeds 256 characters")
	ErrForbiddenName = errors.New("name contains forbidden characters")
	ErrInvalidEmail  = errors.New("email is not a valid address")
)

// forbiddenNameChars are rejected to keep names safe for templating and
// header injection.
const forbiddenNameChars = `/()"<>\{}`

// ValidateName checks that a subscriber name is non-empty, bounded, and free
// of characters with special meaning in email headers or markup.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > 256 {
		return ErrNameTooLong
	}
	if strings.ContainsAny(trimmed, forbiddenNameChars) {
		return ErrForbiddenName
	}
	return nil
}

// ValidateEmail checks the syntactic shape of an email address: exactly one
// "@" with a non-empty local part and a non-empty domain, and no whitespace.
// It does not verify deliverability.
func ValidateEmail(email string) error {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return ErrInvalidEmail
	}
	local, dom, found := strings.Cut(email, "@")
	if !found || local == "" || dom == "" {
		return ErrInvalidEmail
	}
	if strings.Contains(dom, "@") {
		return ErrInvalidEmail
	}
	return nil
}
