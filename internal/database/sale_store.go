package database

import (
	"context"
	"errors"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/models"
	"go-pos-terminal/internal/sale"

	"gorm.io/gorm"
)

// SaleStore gives the sale committer a transaction on the catalog database.
type SaleStore struct {
	db *gorm.DB
}

var _ sale.Transactor = (*SaleStore)(nil)

func NewSaleStore(db *gorm.DB) *SaleStore {
	return &SaleStore{db: db}
}

// WithinTx runs fn in a gorm transaction. gorm rolls back when fn returns an
// error or panics and returns the connection to the pool in every case.
func (s *SaleStore) WithinTx(ctx context.Context, fn func(w sale.Writer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txWriter{tx: tx})
	})
}

type txWriter struct {
	tx *gorm.DB
}

func (w *txWriter) InsertSale(ctx context.Context, s *models.Sale) error {
	return w.tx.WithContext(ctx).Create(s).Error
}

func (w *txWriter) InsertLine(ctx context.Context, item *models.SaleItem) error {
	return w.tx.WithContext(ctx).Create(item).Error
}

// DecrementStock re-checks stock in the same statement that lowers it, so a
// sale can never drive stock negative even if it changed after the cart check.
func (w *txWriter) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	db := w.tx.WithContext(ctx)
	res := db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var p models.Product
	err := db.Select("id", "name", "quantity").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return &cart.StockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   quantity,
		Available:   p.Quantity,
	}
}
