package subscription

import "context"

// UnitOfWork scopes the writes of one subscription-creation attempt. All
// writes are finalized by Commit or discarded by Rollback atomically; a
// rolled-back attempt leaves no trace of the subscriber or its token.
type UnitOfWork interface {
	// InsertSubscriber inserts a new subscriber in pending status with the
	// current timestamp and returns its id.
	InsertSubscriber(ctx context.Context, name, email string) (string, error)

	// StoreToken binds a confirmation token to a subscriber.
	StoreToken(ctx context.Context, subscriberID, token string) error

	Commit() error
	Rollback() error
}

// Store is the data access contract for subscribers and confirmation tokens.
// Implementations must be safe for concurrent use.
type Store interface {
	// Begin opens a unit of work for one subscription-creation attempt.
	Begin(ctx context.Context) (UnitOfWork, error)

	// FindSubscriberIDByToken returns the subscriber id a token is bound to.
	// Returns ErrTokenNotFound if the token was never issued.
	FindSubscriberIDByToken(ctx context.Context, token string) (string, error)

	// ConfirmSubscriber transitions a subscriber to confirmed status in its
	// own atomic unit, outside any UnitOfWork. Confirming an
	// already-confirmed subscriber is a no-op.
	ConfirmSubscriber(ctx context.Context, subscriberID string) error
}

// Mailer dispatches a single transactional email. Implementations are
// one-shot: no retry, no queuing, bounded by their own timeout.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody, textBody string) error
}
