package reserve

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Expiry is the checkout hold duration. It is a hard deadline: an expired
// hold is never handed back to a caller.
const Expiry = 15 * time.Minute

var (
	ErrInvalid  = errors.New("variantId, productId and a positive quantity are required")
	ErrNotFound = errors.New("reservation not found")
	ErrExpired  = errors.New("reservation has expired")
)

// Reservation is a time-boxed stock hold created at checkout start. It is
// owned exclusively by the Store; expiry is lazy (checked on read and by
// Sweep), there is no internal timer.
type Reservation struct {
	ID        string    `json:"id"`
	VariantID string    `json:"variantId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	SessionID string    `json:"sessionId,omitempty"`
}

// StockChecker verifies real inventory before a hold is granted. The
// default wiring passes none: creation trusts the caller.
type StockChecker func(variantID, productID string, quantity int) error

type Store struct {
	mu    sync.Mutex
	byID  map[string]Reservation
	clock func() time.Time
	check StockChecker
}

type Option func(*Store)

// WithClock overrides the time source, for deterministic expiry tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithStockChecker installs an inventory verification hook on Create.
func WithStockChecker(check StockChecker) Option {
	return func(s *Store) { s.check = check }
}

func NewStore(opts ...Option) *Store {
	s := &Store{byID: make(map[string]Reservation), clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new 15-minute hold and opportunistically sweeps expired
// ones. Both ids and a positive quantity are required.
func (s *Store) Create(variantID, productID string, quantity int, sessionID string) (Reservation, error) {
	if variantID == "" || productID == "" || quantity <= 0 {
		return Reservation{}, ErrInvalid
	}
	if s.check != nil {
		if err := s.check(variantID, productID, quantity); err != nil {
			return Reservation{}, err
		}
	}

	now := s.clock()
	r := Reservation{
		ID:        "res_" + uuid.NewString(),
		VariantID: variantID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		ExpiresAt: now.Add(Expiry),
		SessionID: sessionID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.ID] = r
	s.sweepLocked(now)
	return r, nil
}

// Get returns the hold if it exists and is still valid. An expired hold is
// deleted and reported as ErrExpired, distinct from ErrNotFound, so callers
// can tell "never existed" from "timed out".
func (s *Store) Get(id string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	if s.clock().After(r.ExpiresAt) {
		delete(s.byID, id)
		return Reservation{}, ErrExpired
	}
	return r, nil
}

// Release deletes the hold unconditionally if present (checkout completed
// or cancelled).
func (s *Store) Release(id string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return Reservation{}, ErrNotFound
	}
	delete(s.byID, id)
	return r, nil
}

// Sweep drops every expired hold and reports how many were removed. A
// periodic external caller (cron or ticker) drives this to bound memory in
// long-running processes.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.clock())
}

func (s *Store) sweepLocked(now time.Time) int {
	cleaned := 0
	for id, r := range s.byID {
		if r.ExpiresAt.Before(now) {
			delete(s.byID, id)
			cleaned++
		}
	}
	return cleaned
}

// Len reports the current number of stored holds, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
