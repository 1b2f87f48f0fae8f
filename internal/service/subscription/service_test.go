package subscription_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/ignite/newsletter/internal/service/subscription"
)

// memStore is an in-memory Store for unit testing. Writes made under a unit
// of work stay invisible until Commit, mirroring the transactional contract.
type memStore struct {
	mu          sync.Mutex
	subscribers map[string]*memSubscriber // committed, keyed by id
	tokens      map[string]string         // committed, token → subscriber id
	nextID      int

	beginErr   error
	insertErr  error
	tokenErr   error
	commitErr  error
	findErr    error
	confirmErr error
}

type memSubscriber struct {
	name   string
	email  string
	status string
}

func newMemStore() *memStore {
	return &memStore{
		subscribers: make(map[string]*memSubscriber),
		tokens:      make(map[string]string),
	}
}

func (m *memStore) Begin(_ context.Context) (subscription.UnitOfWork, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memUnitOfWork{
		store:       m,
		subscribers: make(map[string]*memSubscriber),
		tokens:      make(map[string]string),
	}, nil
}

func (m *memStore) FindSubscriberIDByToken(_ context.Context, token string) (string, error) {
	if m.findErr != nil {
		return "", m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return "", subscription.ErrTokenNotFound
	}
	return id, nil
}

func (m *memStore) ConfirmSubscriber(_ context.Context, subscriberID string) error {
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subscribers[subscriberID]; ok {
		sub.status = "confirmed"
	}
	return nil
}

func (m *memStore) count() (subscribers, tokens int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers), len(m.tokens)
}

type memUnitOfWork struct {
	store       *memStore
	subscribers map[string]*memSubscriber
	tokens      map[string]string
}

func (u *memUnitOfWork) InsertSubscriber(_ context.Context, name, email string) (string, error) {
	if u.store.insertErr != nil {
		return "", u.store.insertErr
	}
	u.store.mu.Lock()
	u.store.nextID++
	id := fmt.Sprintf("sub-%d", u.store.nextID)
	u.store.mu.Unlock()
	u.subscribers[id] = &memSubscriber{name: name, email: email, status: "pending"}
	return id, nil
}

func (u *memUnitOfWork) StoreToken(_ context.Context, subscriberID, token string) error {
	if u.store.tokenErr != nil {
		return u.store.tokenErr
	}
	u.tokens[token] = subscriberID
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if u.store.commitErr != nil {
		return u.store.commitErr
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for id, sub := range u.subscribers {
		u.store.subscribers[id] = sub
	}
	for token, id := range u.tokens {
		u.store.tokens[token] = id
	}
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	u.subscribers = nil
	u.tokens = nil
	return nil
}

// fakeMailer records sends and can be made to fail. onSend, if set, runs
// before each send is recorded.
type fakeMailer struct {
	mu     sync.Mutex
	err    error
	sends  []sentEmail
	onSend func()
}

type sentEmail struct {
	to      string
	subject string
	html    string
	text    string
}

func (f *fakeMailer) Send(_ context.Context, recipient, subject, htmlBody, textBody string) error {
	if f.onSend != nil {
		f.onSend()
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentEmail{to: recipient, subject: subject, html: htmlBody, text: textBody})
	return nil
}

func (f *fakeMailer) sent() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail(nil), f.sends...)
}

const testBaseURL = "https://newsletter.example.com"

var confirmLinkRe = regexp.MustCompile(
	`https://newsletter\.example\.com/subscriptions/confirm\?subscription_token=([a-zA-Z0-9]{25})`,
)

func kindOf(t *testing.T, err error) subscription.Kind {
	t.Helper()
	var svcErr *subscription.Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *subscription.Error, got %T: %v", err, err)
	}
	return svcErr.Kind
}

func TestSubscribeThenConfirm(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := subscription.NewService(store, mailer, testBaseURL)

	err := svc.Subscribe(context.Background(), subscription.SubscribeInput{
		Name:  "Ursula Le Guin",
		Email: "ursula_le_guin@gmail.com",
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	subs, tokens := store.count()
	if subs != 1 || tokens != 1 {
		t.Fatalf("store has %d subscribers and %d tokens, want 1 and 1", subs, tokens)
	}
	for _, sub := range store.subscribers {
		if sub.status != "pending" {
			t.Errorf("subscriber status = %q before confirmation, want pending", sub.status)
		}
	}

	sent := mailer.sent()
	if len(sent) != 1 {
		t.Fatalf("mailer recorded %d sends, want 1", len(sent))
	}
	if sent[0].to != "ursula_le_guin@gmail.com" {
		t.Errorf("email sent to %q", sent[0].to)
	}

	match := confirmLinkRe.FindStringSubmatch(sent[0].html)
	if match == nil {
		t.Fatalf("html body has no confirmation link: %s", sent[0].html)
	}
	if !confirmLinkRe.MatchString(sent[0].text) {
		t.Errorf("text body has no confirmation link: %s", sent[0].text)
	}

	if err := svc.Confirm(context.Background(), match[1]); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	for _, sub := range store.subscribers {
		if sub.status != "confirmed" {
			t.Errorf("subscriber status = %q after confirmation, want confirmed", sub.status)
		}
	}
}

func TestSubscribeValidation(t *testing.T) {
	tests := []struct {
		name  string
		input subscription.SubscribeInput
	}{
		{"empty name", subscription.SubscribeInput{Name: "", Email: "a@b.com"}},
		{"missing at", subscription.SubscribeInput{Name: "Ursula", Email: "ursulagmail.com"}},
		{"empty local part", subscription.SubscribeInput{Name: "Ursula", Email: "@gmail.com"}},
		{"empty domain", subscription.SubscribeInput{Name: "Ursula", Email: "ursula@"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := subscription.NewService(store, &fakeMailer{}, testBaseURL)

			err := svc.Subscribe(context.Background(), tt.input)
			if kindOf(t, err) != subscription.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
			if subs, tokens := store.count(); subs != 0 || tokens != 0 {
				t.Errorf("store written on invalid input: %d subscribers, %d tokens", subs, tokens)
			}
		})
	}
}

func TestSubscribeMailerFailureRollsBack(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{err: errors.New("provider returned 500")}
	svc := subscription.NewService(store, mailer, testBaseURL)

	err := svc.Subscribe(context.Background(), subscription.SubscribeInput{
		Name:  "Ursula Le Guin",
		Email: "ursula_le_guin@gmail.com",
	})
	if kindOf(t, err) != subscription.KindUnexpected {
		t.Errorf("expected unexpected error, got %v", err)
	}
	if subs, tokens := store.count(); subs != 0 || tokens != 0 {
		t.Errorf("rows survived a failed dispatch: %d subscribers, %d tokens", subs, tokens)
	}
}

func TestSubscribeCommitHappensAfterSend(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	mailer.onSend = func() {
		if subs, tokens := store.count(); subs != 0 || tokens != 0 {
			t.Errorf("writes visible before dispatch completed: %d subscribers, %d tokens", subs, tokens)
		}
	}
	svc := subscription.NewService(store, mailer, testBaseURL)

	err := svc.Subscribe(context.Background(), subscription.SubscribeInput{
		Name:  "Ursula Le Guin",
		Email: "ursula_le_guin@gmail.com",
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
}

func TestSubscribeStoreFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name  string
		setup func(*memStore)
	}{
		{"begin fails", func(m *memStore) { m.beginErr = boom }},
		{"insert fails", func(m *memStore) { m.insertErr = boom }},
		{"store token fails", func(m *memStore) { m.tokenErr = boom }},
		{"commit fails", func(m *memStore) { m.commitErr = boom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(store)
			svc := subscription.NewService(store, &fakeMailer{}, testBaseURL)

			err := svc.Subscribe(context.Background(), subscription.SubscribeInput{
				Name:  "Ursula Le Guin",
				Email: "ursula_le_guin@gmail.com",
			})
			if kindOf(t, err) != subscription.KindUnexpected {
				t.Errorf("expected unexpected error, got %v", err)
			}
			if subs, tokens := store.count(); subs != 0 || tokens != 0 {
				t.Errorf("rows survived a failed attempt: %d subscribers, %d tokens", subs, tokens)
			}
		})
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	store := newMemStore()
	svc := subscription.NewService(store, &fakeMailer{}, testBaseURL)

	err := svc.Confirm(context.Background(), "neverissuedtoken1234567xy")
	if kindOf(t, err) != subscription.KindUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := subscription.NewService(store, mailer, testBaseURL)

	if err := svc.Subscribe(context.Background(), subscription.SubscribeInput{
		Name:  "Ursula Le Guin",
		Email: "ursula_le_guin@gmail.com",
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	token := confirmLinkRe.FindStringSubmatch(mailer.sent()[0].html)[1]
	if err := svc.Confirm(context.Background(), token); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if err := svc.Confirm(context.Background(), token); err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	for _, sub := range store.subscribers {
		if sub.status != "confirmed" {
			t.Errorf("subscriber status = %q, want confirmed", sub.status)
		}
	}
}

func TestConfirmStoreFailureIsNotUnauthorized(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("connection reset")
	svc := subscription.NewService(store, &fakeMailer{}, testBaseURL)

	err := svc.Confirm(context.Background(), "sometokenvalue1234567890a")
	if kindOf(t, err) != subscription.KindUnexpected {
		t.Errorf("expected unexpected error, got %v", err)
	}
}
