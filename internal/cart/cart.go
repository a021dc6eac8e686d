// Package cart holds the in-memory cart of the active terminal session.
//
// Every mutation that can raise a quantity re-reads the product's stock from
// the catalog, so a quantity never exceeds the stock seen at the last check.
package cart

import (
	"context"
	"errors"
	"fmt"

	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrUnsavedProduct    = errors.New("product has not been saved to the catalog")
)

// StockError describes a rejected quantity. It matches ErrInsufficientStock.
type StockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StockReader is the part of the catalog the cart needs.
type StockReader interface {
	StockCount(ctx context.Context, productID int64) (int, error)
}

// Line is a read-only copy of one cart entry.
type Line struct {
	Product  models.Product
	Quantity int
}

// Subtotal is price × quantity, unrounded.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type entry struct {
	product  models.Product
	quantity int
}

// Cart maps products to requested quantities. It is owned by a single session
// and is not safe for concurrent use.
type Cart struct {
	stock   StockReader
	entries map[int64]*entry
	order   []int64
}

func New(stock StockReader) *Cart {
	return &Cart{
		stock:   stock,
		entries: make(map[int64]*entry),
	}
}

// Add raises the product's quantity by delta, creating the entry if needed.
func (c *Cart) Add(ctx context.Context, product models.Product, delta int) error {
	if !product.IsSaved() {
		return ErrUnsavedProduct
	}
	if delta < 1 {
		return ErrInvalidQuantity
	}

	requested := c.Quantity(product) + delta
	if err := c.checkStock(ctx, product, requested); err != nil {
		return err
	}

	if e, ok := c.entries[product.ID]; ok {
		e.quantity = requested
		return nil
	}
	c.entries[product.ID] = &entry{product: product, quantity: requested}
	c.order = append(c.order, product.ID)
	return nil
}

// SetQuantity replaces the product's quantity. Zero is not accepted; use Remove.
func (c *Cart) SetQuantity(ctx context.Context, product models.Product, quantity int) error {
	if !product.IsSaved() {
		return ErrUnsavedProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := c.checkStock(ctx, product, quantity); err != nil {
		return err
	}

	if e, ok := c.entries[product.ID]; ok {
		e.quantity = quantity
		return nil
	}
	c.entries[product.ID] = &entry{product: product, quantity: quantity}
	c.order = append(c.order, product.ID)
	return nil
}

// Remove deletes the product's entry. Unknown products are ignored.
func (c *Cart) Remove(product models.Product) {
	if _, ok := c.entries[product.ID]; !ok {
		return
	}
	delete(c.entries, product.ID)
	for i, id := range c.order {
		if id == product.ID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart. Call it only after the sale was committed.
func (c *Cart) Clear() {
	c.entries = make(map[int64]*entry)
	c.order = nil
}

// Quantity returns the current quantity for product, 0 when absent.
func (c *Cart) Quantity(product models.Product) int {
	if e, ok := c.entries[product.ID]; ok {
		return e.quantity
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.entries) == 0
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// Lines returns a snapshot of the entries in the order they were first added.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		e := c.entries[id]
		lines = append(lines, Line{Product: e.product, Quantity: e.quantity})
	}
	return lines
}

// Total sums price × quantity over all entries and rounds half-up to cents.
func (c *Cart) Total() decimal.Decimal {
	return Total(c.Lines())
}

// Total sums the subtotals of lines, rounded half-up to 2 fraction digits.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return RoundMoney(sum)
}

// RoundMoney rounds to cents, halves away from zero (half-up for amounts >= 0).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func (c *Cart) checkStock(ctx context.Context, product models.Product, requested int) error {
	available, err := c.stock.StockCount(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("read stock for product %d: %w", product.ID, err)
	}
	if requested > available {
		return &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   available,
		}
	}
	return nil
}
