package database

import (
	"context"
	"io"
	"time"

	"go-pos-terminal/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reports reads committed sales for the reporting screen.
type Reports struct {
	db *gorm.DB
}

func NewReports(db *gorm.DB) *Reports {
	return &Reports{db: db}
}

// SaleLine is a sale item as shown on the report. ProductName is the current
// catalog name, or models.DeletedProductName once the product is gone;
// NameAtSale is the snapshot taken when the sale was committed.
type SaleLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	NameAtSale  string          `json:"name_at_sale"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalesSummary holds revenue and count for a period.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCount   int64           `json:"total_count"`
}

// TopSeller is one row of the best-sellers table.
type TopSeller struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sold        int64           `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ListSales returns sales newest first. limit <= 0 means all.
func (r *Reports) ListSales(ctx context.Context, limit int) ([]models.Sale, error) {
	q := r.db.WithContext(ctx).Order("sale_date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var sales []models.Sale
	err := q.Find(&sales).Error
	return sales, err
}

func (r *Reports) GetSale(ctx context.Context, id int64) (models.Sale, error) {
	var s models.Sale
	err := r.db.WithContext(ctx).First(&s, id).Error
	return s, err
}

// SaleItems returns the lines of one sale in insertion order. Lines whose
// product was deleted carry a placeholder name instead of failing.
func (r *Reports) SaleItems(ctx context.Context, saleID int64) ([]SaleLine, error) {
	var rows []struct {
		ProductID   int64
		LiveName    *string
		NameAtSale  string
		Quantity    int
		PriceAtSale decimal.Decimal
	}
	// LEFT JOIN in case the product was deleted
	err := r.db.WithContext(ctx).Table("sale_items AS si").
		Select("si.product_id, p.name AS live_name, si.product_name AS name_at_sale, si.quantity, si.price_at_sale").
		Joins("LEFT JOIN products AS p ON si.product_id = p.id").
		Where("si.sale_id = ?", saleID).
		Order("si.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]SaleLine, 0, len(rows))
	for _, row := range rows {
		name := models.DeletedProductName
		if row.LiveName != nil {
			name = *row.LiveName
		}
		lines = append(lines, SaleLine{
			ProductID:   row.ProductID,
			ProductName: name,
			NameAtSale:  row.NameAtSale,
			Quantity:    row.Quantity,
			PriceAtSale: row.PriceAtSale,
			Subtotal:    row.PriceAtSale.Mul(decimal.NewFromInt(int64(row.Quantity))).Round(2),
		})
	}
	return lines, nil
}

// Summary calculates revenue and sale count within [start, end].
func (r *Reports) Summary(ctx context.Context, start, end time.Time) (SalesSummary, error) {
	var result SalesSummary
	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("sale_date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_price), 0), COUNT(*)").
		Row().
		Scan(&result.TotalRevenue, &result.TotalCount)
	if err != nil {
		return SalesSummary{}, err
	}
	result.TotalRevenue = result.TotalRevenue.Round(2)
	return result, nil
}

// TopSelling ranks products by units sold, using the name captured at sale time.
func (r *Reports) TopSelling(ctx context.Context, limit int) ([]TopSeller, error) {
	var rows []struct {
		ProductID   int64
		ProductName string
		Sold        int64
		Revenue     decimal.Decimal
	}
	err := r.db.WithContext(ctx).Table("sale_items").
		Select("product_id, MAX(product_name) AS product_name, SUM(quantity) AS sold, SUM(quantity * price_at_sale) AS revenue").
		Group("product_id").
		Order("sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]TopSeller, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopSeller{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Sold:        row.Sold,
			Revenue:     row.Revenue.Round(2),
		})
	}
	return out, nil
}

// ValuationItem is one product's stock value at its selling price.
type ValuationItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
}

// CategoryValuation groups ValuationItems under one category.
type CategoryValuation struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type StockValuation struct {
	Categories []CategoryValuation `json:"categories"`
	GrandTotal decimal.Decimal     `json:"grand_total"`
}

// Uncategorized labels products without a category in the valuation.
const Uncategorized = "Uncategorized"

// StockValuation totals quantity × price of everything on the shelves,
// grouped by category name in alphabetical order.
func (r *Reports) StockValuation(ctx context.Context) (StockValuation, error) {
	var rows []struct {
		ID           int64
		Name         string
		Quantity     int
		Price        decimal.Decimal
		CategoryName *string
	}
	err := r.db.WithContext(ctx).Table("products AS p").
		Select("p.id, p.name, p.quantity, p.price, c.name AS category_name").
		Joins("LEFT JOIN categories AS c ON p.category_id = c.id").
		Order("c.name ASC").Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return StockValuation{}, err
	}

	out := StockValuation{Categories: []CategoryValuation{}, GrandTotal: decimal.Zero}
	index := make(map[string]int)
	for _, row := range rows {
		name := Uncategorized
		if row.CategoryName != nil {
			name = *row.CategoryName
		}
		i, ok := index[name]
		if !ok {
			i = len(out.Categories)
			index[name] = i
			out.Categories = append(out.Categories, CategoryValuation{CategoryName: name, Subtotal: decimal.Zero})
		}
		value := row.Price.Mul(decimal.NewFromInt(int64(row.Quantity))).Round(2)
		group := &out.Categories[i]
		group.Items = append(group.Items, ValuationItem{
			ProductID: row.ID,
			Name:      row.Name,
			Quantity:  row.Quantity,
			Price:     row.Price,
			Value:     value,
		})
		group.Subtotal = group.Subtotal.Add(value)
		out.GrandTotal = out.GrandTotal.Add(value)
	}
	return out, nil
}

type saleCSVRow struct {
	ID            int64  `csv:"id"`
	SaleDate      string `csv:"sale_date"`
	TotalPrice    string `csv:"total_price"`
	PaymentMethod string `csv:"payment_method"`
	CashTendered  string `csv:"cash_tendered"`
	ChangeGiven   string `csv:"change_given"`
	CardType      string `csv:"card_type"`
}

// ExportSalesCSV writes every sale, newest first, as CSV.
func (r *Reports) ExportSalesCSV(ctx context.Context, w io.Writer) error {
	sales, err := r.ListSales(ctx, 0)
	if err != nil {
		return err
	}
	rows := make([]*saleCSVRow, 0, len(sales))
	for _, s := range sales {
		row := &saleCSVRow{
			ID:            s.ID,
			SaleDate:      s.SaleDate.Format("2006-01-02 15:04:05"),
			TotalPrice:    s.TotalPrice.StringFixed(2),
			PaymentMethod: string(s.PaymentMethod),
		}
		if s.CashTendered != nil {
			row.CashTendered = s.CashTendered.StringFixed(2)
		}
		if s.ChangeGiven != nil {
			row.ChangeGiven = s.ChangeGiven.StringFixed(2)
		}
		if s.CardType != nil {
			row.CardType = *s.CardType
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(&rows, w)
}
