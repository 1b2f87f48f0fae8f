package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// Service implements the subscription workflow. It coordinates the store,
// the token generator, and the mailer. All public methods are safe for
// concurrent use if the underlying store is concurrency-safe.
type Service struct {
	store   Store
	mailer  Mailer
	baseURL string
}

// NewService creates a subscription service. publicBaseURL is the externally
// reachable address of this service, used to build confirmation links.
func NewService(store Store, mailer Mailer, publicBaseURL string) *Service {
	return &Service{
		store:   store,
		mailer:  mailer,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// SubscribeInput holds the already-parsed fields of a signup request.
type SubscribeInput struct {
	Name  string
	Email string
}

// Subscribe creates a pending subscriber, binds a fresh confirmation token to
// it, and emails the confirmation link. The database transaction commits only
// after the email dispatch succeeds: a subscriber either exists with a
// reachable confirmation path, or not at all.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if err := domain.ValidateName(name); err != nil {
		return validation("invalid subscriber name", err)
	}
	if err := domain.ValidateEmail(email); err != nil {
		return validation("invalid subscriber email", err)
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return unexpected("begin subscription transaction", err)
	}

	subscriberID, err := uow.InsertSubscriber(ctx, name, email)
	if err != nil {
		return s.abort(uow, "insert pending subscriber", err)
	}

	token, err := generateToken()
	if err != nil {
		return s.abort(uow, "generate confirmation token", err)
	}

	if err := uow.StoreToken(ctx, subscriberID, token); err != nil {
		return s.abort(uow, "store confirmation token", err)
	}

	if err := s.sendConfirmation(ctx, email, token); err != nil {
		return s.abort(uow, "dispatch confirmation email", err)
	}

	if err := uow.Commit(); err != nil {
		return unexpected("commit subscription transaction", err)
	}

	logger.Info("subscription created", "subscriber_id", subscriberID, "email", email)
	return nil
}

// Confirm resolves a confirmation token and transitions its subscriber to
// confirmed. Confirming twice is idempotent; an unrecognized token yields an
// unauthorized outcome, never an internal error.
func (s *Service) Confirm(ctx context.Context, token string) error {
	subscriberID, err := s.store.FindSubscriberIDByToken(ctx, token)
	if errors.Is(err, ErrTokenNotFound) {
		return unauthorized()
	}
	if err != nil {
		return unexpected("look up subscription token", err)
	}

	if err := s.store.ConfirmSubscriber(ctx, subscriberID); err != nil {
		return unexpected("mark subscriber confirmed", err)
	}

	logger.Info("subscription confirmed", "subscriber_id", subscriberID)
	return nil
}

// abort rolls the unit of work back and surfaces the original cause. A
// rollback failure is logged but never masks the error that triggered it.
func (s *Service) abort(uow UnitOfWork, msg string, cause error) error {
	if rbErr := uow.Rollback(); rbErr != nil {
		logger.Error("rollback failed", "error", logger.ErrChain(rbErr))
	}
	return unexpected(msg, cause)
}

func (s *Service) sendConfirmation(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, token)
	html := fmt.Sprintf(
		"Welcome to our newsletter!<br />Click <a href=%q>here</a> to confirm your subscription.",
		link,
	)
	text := fmt.Sprintf(
		"Welcome to our newsletter!\nVisit %s to confirm your subscription.",
		link,
	)
	return s.mailer.Send(ctx, email, "Welcome!", html, text)
}
