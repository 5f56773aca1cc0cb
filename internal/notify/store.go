package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "candela/internal/log"
	"candela/internal/mail"
	"candela/internal/validate"
)

var (
	ErrMissingFields = errors.New("productId and email are required")
	ErrInvalidEmail  = errors.New("please provide a valid email address")
	ErrNotFound      = errors.New("notification not found")
)

// Subscription is a customer's request to be mailed when an item restocks.
// Notified flips exactly once; the record then stays in the ledger for
// audit but never matches again.
type Subscription struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"productId"`
	VariantID  string     `json:"variantId,omitempty"`
	Email      string     `json:"email"`
	Notified   bool       `json:"notified"`
	CreatedAt  time.Time  `json:"createdAt"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
}

// RestockEvent carries what the back-in-stock email needs to say.
type RestockEvent struct {
	ProductID    string
	VariantID    string
	ProductName  string
	VariantValue string
	ProductURL   string
	SKU          string
}

// Store is the in-memory subscription ledger. Subscriptions are kept in
// insertion order so batch sends are deterministic.
type Store struct {
	mu     sync.Mutex
	subs   []Subscription
	sender mail.Sender
	clock  func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func NewStore(sender mail.Sender, opts ...Option) *Store {
	s := &Store{sender: sender, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an email for a (product, variant) pair. A second
// subscribe with the same triple before the restock fires returns the
// existing active record instead of duplicating it; the second return value
// reports that case.
func (s *Store) Subscribe(productID, variantID, email string) (Subscription, bool, error) {
	if productID == "" || email == "" {
		return Subscription{}, false, ErrMissingFields
	}
	email, ok := validate.Email(email)
	if !ok {
		return Subscription{}, false, ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		if !sub.Notified && sub.ProductID == productID && sub.VariantID == variantID && sub.Email == email {
			return sub, true, nil
		}
	}

	sub := Subscription{
		ID:        "notif_" + uuid.NewString(),
		ProductID: productID,
		VariantID: variantID,
		Email:     email,
		CreatedAt: s.clock(),
	}
	s.subs = append(s.subs, sub)
	return sub, false, nil
}

// List returns the active (not yet notified) subscriptions for an email.
func (s *Store) List(email string) []Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Subscription{}
	for _, sub := range s.subs {
		if sub.Email == email && !sub.Notified {
			out = append(out, sub)
		}
	}
	return out
}

// Unsubscribe removes the subscription unconditionally if present.
func (s *Store) Unsubscribe(id string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return sub, nil
		}
	}
	return Subscription{}, ErrNotFound
}

// NotifyRestock mails every active subscriber matching the event's
// (product, variant) pair and marks each successful send as notified. An
// absent variant matches only subscriptions without one. A failed send
// is logged and skipped; the batch continues. Returns the number sent.
func (s *Store) NotifyRestock(ev RestockEvent) (int, error) {
	body, err := mail.RestockAvailableHTML(mail.RestockData{
		ProductName:  ev.ProductName,
		VariantValue: ev.VariantValue,
		ProductURL:   ev.ProductURL,
		SKU:          ev.SKU,
	})
	if err != nil {
		return 0, err
	}
	subject := "Back in stock: " + ev.ProductName
	if ev.VariantValue != "" {
		subject += " (" + ev.VariantValue + ")"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent := 0
	for i := range s.subs {
		sub := &s.subs[i]
		if sub.Notified || sub.ProductID != ev.ProductID || sub.VariantID != ev.VariantID {
			continue
		}
		if _, err := s.sender.Send(mail.Message{To: sub.Email, Subject: subject, HTML: body}); err != nil {
			applog.Error(nil, "notify.restock.send.fail", err, map[string]any{
				"email": sub.Email, "product": ev.ProductID, "variant": ev.VariantID,
			})
			continue
		}
		now := s.clock()
		sub.Notified = true
		sub.NotifiedAt = &now
		sent++
	}
	return sent, nil
}
