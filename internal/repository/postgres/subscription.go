package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// SubscriptionRepo implements subscription.Store against PostgreSQL.
type SubscriptionRepo struct{ db *sql.DB }

// NewSubscriptionRepo creates a Postgres-backed subscription store.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Begin opens the transaction that scopes one subscription-creation attempt.
// The transaction holds its pooled connection until Commit or Rollback,
// including across the caller's email dispatch.
func (r *SubscriptionRepo) Begin(ctx context.Context) (subscription.UnitOfWork, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (r *SubscriptionRepo) FindSubscriberIDByToken(ctx context.Context, token string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT subscriber_id FROM subscription_tokens
		WHERE subscription_token = $1
	`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", subscription.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find subscriber id by token: %w", err)
	}
	return id, nil
}

func (r *SubscriptionRepo) ConfirmSubscriber(ctx context.Context, subscriberID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $1 WHERE id = $2
	`, domain.SubscriberConfirmed, subscriberID)
	if err != nil {
		return fmt.Errorf("confirm subscriber: %w", err)
	}
	return nil
}

type unitOfWork struct{ tx *sql.Tx }

func (u *unitOfWork) InsertSubscriber(ctx context.Context, name, email string) (string, error) {
	id := uuid.New().String()
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO subscriptions (id, name, email, subscribed_at, status)
		VALUES ($1, $2, $3, NOW(), $4)
	`, id, name, email, domain.SubscriberPending)
	if err != nil {
		return "", fmt.Errorf("insert subscriber: %w", err)
	}
	return id, nil
}

func (u *unitOfWork) StoreToken(ctx context.Context, subscriberID, token string) error {
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`, token, subscriberID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("confirmation token collided with an existing one: %w", err)
		}
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (u *unitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
