// Package session drives one checkout flow: the cart, the payment negotiation
// and the sale commit, in that order.
package session

import (
	"context"
	"errors"
	"sync"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/checkout"
	"go-pos-terminal/internal/models"
	"go-pos-terminal/internal/sale"

	"go.uber.org/zap"
)

var (
	ErrCheckoutInProgress = errors.New("finish or cancel the current checkout first")
	ErrNoCheckout         = errors.New("no checkout in progress")
)

// Catalog is what the session reads from the product store.
type Catalog interface {
	cart.StockReader
	GetProduct(ctx context.Context, id int64) (models.Product, error)
}

// Committer persists a validated sale.
type Committer interface {
	Commit(ctx context.Context, lines []cart.Line, outcome checkout.PaymentOutcome) (int64, error)
}

// Session owns the cart of the active terminal. While a checkout is open the
// cart is frozen so the negotiated total stays valid.
type Session struct {
	cart      *cart.Cart
	catalog   Catalog
	committer Committer
	checkout  *checkout.Negotiation
	logger    *zap.Logger
}

func New(catalog Catalog, committer Committer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.L()
	}
	return &Session{
		cart:      cart.New(catalog),
		catalog:   catalog,
		committer: committer,
		logger:    logger,
	}
}

// Lines returns a snapshot of the cart.
func (s *Session) Lines() []cart.Line { return s.cart.Lines() }

func (s *Session) Total() string { return s.cart.Total().StringFixed(2) }

func (s *Session) Cart() *cart.Cart { return s.cart }

// Checkout returns the open negotiation, or nil.
func (s *Session) Checkout() *checkout.Negotiation { return s.checkout }

// Add looks the product up and adds delta units of it to the cart.
func (s *Session) Add(ctx context.Context, productID int64, delta int) error {
	if s.checkout != nil {
		return ErrCheckoutInProgress
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return s.cart.Add(ctx, p, delta)
}

func (s *Session) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if s.checkout != nil {
		return ErrCheckoutInProgress
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return s.cart.SetQuantity(ctx, p, quantity)
}

func (s *Session) Remove(productID int64) error {
	if s.checkout != nil {
		return ErrCheckoutInProgress
	}
	s.cart.Remove(models.Product{ID: productID})
	return nil
}

// ClearCart empties the cart without selling anything (a voided basket).
func (s *Session) ClearCart() error {
	if s.checkout != nil {
		return ErrCheckoutInProgress
	}
	s.cart.Clear()
	return nil
}

// BeginCheckout opens a negotiation over the current cart total.
func (s *Session) BeginCheckout() (*checkout.Negotiation, error) {
	if s.checkout != nil {
		return nil, ErrCheckoutInProgress
	}
	if s.cart.IsEmpty() {
		return nil, sale.ErrEmptyCart
	}
	s.checkout = checkout.New(s.cart.Total())
	return s.checkout, nil
}

// AbandonCheckout closes the negotiation with no side effects; the cart is kept.
func (s *Session) AbandonCheckout() {
	if s.checkout == nil {
		return
	}
	if !s.checkout.State().Terminal() {
		_, _ = s.checkout.Cancel()
	}
	s.logger.Info("checkout abandoned",
		zap.String("total", s.checkout.Total().StringFixed(2)),
		zap.Stringer("state", s.checkout.State()))
	s.checkout = nil
}

// Complete commits the validated negotiation. The cart is cleared only when
// the sale was stored; on failure cart and negotiation stay so the operator can
// retry or abandon.
func (s *Session) Complete(ctx context.Context) (int64, error) {
	if s.checkout == nil {
		return 0, ErrNoCheckout
	}
	outcome := s.checkout.Outcome()
	if !outcome.IsValidated() {
		return 0, sale.ErrNotValidated
	}

	id, err := s.committer.Commit(ctx, s.cart.Lines(), outcome)
	if err != nil {
		return 0, err
	}
	s.cart.Clear()
	s.checkout = nil
	return id, nil
}

// Terminal serializes access to the single active session.
type Terminal struct {
	mu      sync.Mutex
	session *Session
}

func NewTerminal(s *Session) *Terminal {
	return &Terminal{session: s}
}

// Do runs fn with exclusive access to the session.
func (t *Terminal) Do(fn func(s *Session) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.session)
}
