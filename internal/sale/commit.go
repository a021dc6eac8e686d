// Package sale persists a completed checkout: sale header, one line per cart
// entry and the matching stock decrements, all inside one transaction.
package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/checkout"
	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCommitFailed = errors.New("sale could not be saved")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotValidated = errors.New("payment has not been validated")
)

// CommitError wraps the storage failure that aborted a commit.
// errors.Is(err, ErrCommitFailed) holds for every CommitError.
type CommitError struct {
	Step string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCommitFailed, e.Step, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

func (e *CommitError) Is(target error) bool { return target == ErrCommitFailed }

// Writer performs the three commit steps against one open transaction.
type Writer interface {
	InsertSale(ctx context.Context, s *models.Sale) error
	InsertLine(ctx context.Context, item *models.SaleItem) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// Transactor runs fn inside a transaction: commit when fn returns nil,
// rollback when it returns an error or panics, and always release the handle.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(w Writer) error) error
}

type Committer struct {
	tx     Transactor
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Committer)

// WithClock overrides the sale timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Committer) { c.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Committer) { c.logger = l }
}

func NewCommitter(tx Transactor, opts ...Option) *Committer {
	c := &Committer{tx: tx, now: time.Now, logger: zap.L()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commit stores the sale and returns its identity. lines must be a snapshot
// of the cart; they are not modified. On failure nothing is persisted and the
// returned error satisfies errors.Is(err, ErrCommitFailed), except for the
// input checks (ErrEmptyCart, ErrNotValidated) which run before any storage access.
//
// The commit is not cancellable once started: ctx cancellation is not
// forwarded to storage.
func (c *Committer) Commit(ctx context.Context, lines []cart.Line, outcome checkout.PaymentOutcome) (int64, error) {
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}
	if !outcome.IsValidated() {
		return 0, ErrNotValidated
	}

	total := cart.Total(lines)
	if !total.Equal(outcome.Total) {
		return 0, fmt.Errorf("%w: outcome total %s does not match cart total %s",
			ErrNotValidated, outcome.Total.StringFixed(2), total.StringFixed(2))
	}

	header := newHeader(total, outcome, c.now())
	ctx = context.WithoutCancel(ctx)

	err := c.tx.WithinTx(ctx, func(w Writer) error {
		if err := w.InsertSale(ctx, header); err != nil {
			return &CommitError{Step: "insert sale", Err: err}
		}
		for _, l := range lines {
			item := &models.SaleItem{
				SaleID:      header.ID,
				ProductID:   l.Product.ID,
				ProductName: l.Product.Name,
				Quantity:    l.Quantity,
				PriceAtSale: l.Product.Price,
			}
			if err := w.InsertLine(ctx, item); err != nil {
				return &CommitError{Step: "insert line", Err: err}
			}
		}
		for _, l := range lines {
			if err := w.DecrementStock(ctx, l.Product.ID, l.Quantity); err != nil {
				return &CommitError{Step: "decrement stock", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		var ce *CommitError
		if !errors.As(err, &ce) {
			// begin/commit failures come back unwrapped
			err = &CommitError{Step: "transaction", Err: err}
		}
		c.logger.Error("sale commit rolled back",
			zap.String("total", total.StringFixed(2)),
			zap.String("method", string(header.PaymentMethod)),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return 0, err
	}

	c.logger.Info("sale committed",
		zap.Int64("sale_id", header.ID),
		zap.String("total", total.StringFixed(2)),
		zap.String("method", string(header.PaymentMethod)),
		zap.Int("lines", len(lines)))
	return header.ID, nil
}

func newHeader(total decimal.Decimal, outcome checkout.PaymentOutcome, at time.Time) *models.Sale {
	s := &models.Sale{
		SaleDate:      at,
		TotalPrice:    total,
		PaymentMethod: outcome.Method(),
	}
	switch outcome.Kind {
	case checkout.OutcomeCash:
		tendered := outcome.Cash.Tendered
		change := outcome.Cash.Change
		s.CashTendered = &tendered
		s.ChangeGiven = &change
	case checkout.OutcomeCard:
		ct := string(outcome.Card.CardType)
		s.CardType = &ct
	}
	return s
}
