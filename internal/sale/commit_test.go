package sale

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/checkout"
	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory Transactor. Writes go to a scratch copy that is
// only published when fn succeeds; failAt injects an error at a named step.
type memStore struct {
	sales  []models.Sale
	items  []models.SaleItem
	stock  map[int64]int
	nextID int64

	failAt   string
	failOnce bool
	calls    []string
	released int
}

type memTx struct {
	store *memStore
	sales []models.Sale
	items []models.SaleItem
	stock map[int64]int
}

func newMemStore(stock map[int64]int) *memStore {
	return &memStore{stock: stock, nextID: 100}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(w Writer) error) (err error) {
	tx := &memTx{store: m, stock: make(map[int64]int, len(m.stock))}
	for k, v := range m.stock {
		tx.stock[k] = v
	}
	defer func() { m.released++ }()
	if err := fn(tx); err != nil {
		return err
	}
	m.sales = append(m.sales, tx.sales...)
	m.items = append(m.items, tx.items...)
	m.stock = tx.stock
	return nil
}

func (m *memStore) step(name string) error {
	m.calls = append(m.calls, name)
	if m.failAt == name {
		if m.failOnce {
			m.failAt = ""
		}
		return errors.New("injected failure at " + name)
	}
	return nil
}

func (t *memTx) InsertSale(_ context.Context, s *models.Sale) error {
	if err := t.store.step("sale"); err != nil {
		return err
	}
	t.store.nextID++
	s.ID = t.store.nextID
	t.sales = append(t.sales, *s)
	return nil
}

func (t *memTx) InsertLine(_ context.Context, item *models.SaleItem) error {
	if err := t.store.step("line"); err != nil {
		return err
	}
	t.items = append(t.items, *item)
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, quantity int) error {
	if err := t.store.step("stock"); err != nil {
		return err
	}
	if t.stock[productID] < quantity {
		return &cart.StockError{ProductID: productID, Requested: quantity, Available: t.stock[productID]}
	}
	t.stock[productID] -= quantity
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixture() ([]cart.Line, checkout.PaymentOutcome) {
	lines := []cart.Line{
		{Product: models.Product{ID: 1, Name: "A", Price: dec("10.00")}, Quantity: 2},
		{Product: models.Product{ID: 2, Name: "B", Price: dec("5.00")}, Quantity: 1},
	}
	return lines, checkout.CashOutcome(dec("25.00"), dec("30.00"))
}

func newTestCommitter(store Transactor) *Committer {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	return NewCommitter(store, WithClock(func() time.Time { return at }), WithLogger(zap.NewNop()))
}

func TestCommitWritesHeaderLinesAndStockInOrder(t *testing.T) {
	store := newMemStore(map[int64]int{1: 5, 2: 5})
	lines, outcome := fixture()

	id, err := newTestCommitter(store).Commit(context.Background(), lines, outcome)
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
	assert.Equal(t, []string{"sale", "line", "line", "stock", "stock"}, store.calls)

	require.Len(t, store.sales, 1)
	s := store.sales[0]
	assert.True(t, dec("25.00").Equal(s.TotalPrice))
	assert.Equal(t, models.PaymentCash, s.PaymentMethod)
	require.NotNil(t, s.CashTendered)
	assert.True(t, dec("30.00").Equal(*s.CashTendered))
	assert.True(t, dec("5.00").Equal(*s.ChangeGiven))
	assert.Nil(t, s.CardType)

	require.Len(t, store.items, 2)
	for _, it := range store.items {
		assert.Equal(t, id, it.SaleID)
	}
	assert.Equal(t, "A", store.items[0].ProductName)
	assert.True(t, dec("10.00").Equal(store.items[0].PriceAtSale))
	assert.Equal(t, map[int64]int{1: 3, 2: 4}, store.stock)
	assert.Equal(t, 1, store.released)
}

func TestCommitCardSaleHasNoCashFields(t *testing.T) {
	store := newMemStore(map[int64]int{1: 5, 2: 5})
	lines, _ := fixture()

	_, err := newTestCommitter(store).Commit(context.Background(), lines, checkout.CardOutcome(dec("25.00"), checkout.CardAmex))
	require.NoError(t, err)
	s := store.sales[0]
	assert.Equal(t, models.PaymentCard, s.PaymentMethod)
	assert.Nil(t, s.CashTendered)
	assert.Nil(t, s.ChangeGiven)
	require.NotNil(t, s.CardType)
	assert.Equal(t, "Amex", *s.CardType)
}

func TestCommitIsAllOrNothing(t *testing.T) {
	for _, step := range []string{"sale", "line", "stock"} {
		t.Run(step, func(t *testing.T) {
			store := newMemStore(map[int64]int{1: 5, 2: 5})
			store.failAt = step
			lines, outcome := fixture()

			id, err := newTestCommitter(store).Commit(context.Background(), lines, outcome)
			require.ErrorIs(t, err, ErrCommitFailed)
			assert.Zero(t, id)
			assert.Empty(t, store.sales)
			assert.Empty(t, store.items)
			assert.Equal(t, map[int64]int{1: 5, 2: 5}, store.stock)
			assert.Equal(t, 1, store.released)

			var ce *CommitError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, ce.Err.Error(), "injected failure")
		})
	}
}

func TestCommitRetryAfterFailure(t *testing.T) {
	store := newMemStore(map[int64]int{1: 5, 2: 5})
	store.failAt, store.failOnce = "stock", true
	lines, outcome := fixture()
	c := newTestCommitter(store)

	_, err := c.Commit(context.Background(), lines, outcome)
	require.ErrorIs(t, err, ErrCommitFailed)

	_, err = c.Commit(context.Background(), lines, outcome)
	require.NoError(t, err)
	assert.Len(t, store.sales, 1)
	assert.Len(t, store.items, 2)
}

func TestCommitSurfacesStockShortageAtCommitTime(t *testing.T) {
	store := newMemStore(map[int64]int{1: 1, 2: 5})
	lines, outcome := fixture()

	_, err := newTestCommitter(store).Commit(context.Background(), lines, outcome)
	require.ErrorIs(t, err, ErrCommitFailed)
	require.ErrorIs(t, err, cart.ErrInsufficientStock)
	assert.Empty(t, store.sales)
	assert.Equal(t, map[int64]int{1: 1, 2: 5}, store.stock)
}

func TestCommitRejectsBadInputWithoutTouchingStorage(t *testing.T) {
	store := newMemStore(map[int64]int{1: 5, 2: 5})
	lines, outcome := fixture()
	c := newTestCommitter(store)

	_, err := c.Commit(context.Background(), nil, outcome)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = c.Commit(context.Background(), lines, checkout.CancelledOutcome())
	require.ErrorIs(t, err, ErrNotValidated)

	_, err = c.Commit(context.Background(), lines, checkout.CashOutcome(dec("20.00"), dec("20.00")))
	require.ErrorIs(t, err, ErrNotValidated)

	assert.Empty(t, store.calls)
	assert.Zero(t, store.released)
}

type failingTransactor struct{ err error }

func (f failingTransactor) WithinTx(context.Context, func(Writer) error) error { return f.err }

func TestCommitWrapsTransactionErrors(t *testing.T) {
	lines, outcome := fixture()
	_, err := newTestCommitter(failingTransactor{err: errors.New("commit: driver bad connection")}).
		Commit(context.Background(), lines, outcome)
	require.ErrorIs(t, err, ErrCommitFailed)
	assert.Contains(t, err.Error(), "bad connection")
}
