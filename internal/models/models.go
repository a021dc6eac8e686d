package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnsavedID marks a Product that has not been persisted yet.
const UnsavedID int64 = 0

// DeletedProductName is shown for sale lines whose product no longer exists.
const DeletedProductName = "[Deleted Product]"

// PaymentMethod is the tag stored on every Sale.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
)

// User - A terminal operator
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Category - Groups products on the sales screen
type Category struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Product - The Inventory. Quantity is the stock count.
// Two products are the same product when their IDs match.
type Product struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:200;not null;index" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	RefNumber  string          `gorm:"size:64;index" json:"ref_number"`
	Brand      string          `gorm:"size:100" json:"brand"`
	ImagePath  string          `gorm:"size:1024" json:"image_path"`
	Quantity   int             `gorm:"not null;default:0" json:"quantity"`
	CategoryID int64           `gorm:"index" json:"category_id"`
}

// IsSaved reports whether the product has a database identity.
func (p Product) IsSaved() bool {
	return p.ID != UnsavedID
}

// SameAs compares products by identity only.
func (p Product) SameAs(other Product) bool {
	return p.ID == other.ID
}

// Sale - The Transaction Header
type Sale struct {
	ID            int64            `gorm:"primaryKey" json:"id"`
	SaleDate      time.Time        `gorm:"not null;index" json:"sale_date"`
	TotalPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"total_price"`
	PaymentMethod PaymentMethod    `gorm:"size:10;not null" json:"payment_method"`
	CashTendered  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cash_tendered,omitempty"`
	ChangeGiven   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"change_given,omitempty"`
	CardType      *string          `gorm:"size:20" json:"card_type,omitempty"`
}

// SaleItem - One line of a sale. ProductID carries no foreign key so
// products can be removed from the catalog after they were sold.
type SaleItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	SaleID      int64           `gorm:"not null;index" json:"sale_id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"size:200" json:"product_name"` // Snapshot of the name at time of sale
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_at_sale"` // Snapshot of price at time of sale
}

// Tables lists every model for AutoMigrate.
var Tables = []interface{}{
	&User{},
	&Category{},
	&Product{},
	&Sale{},
	&SaleItem{},
}
