package database

import (
	"context"
	"errors"
	"strings"

	"go-pos-terminal/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Catalog is the product/category store. The sales screen only reads from it;
// the maintenance methods back the inventory screen.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ListCategories returns all categories sorted by name.
func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// ListProducts returns every product, or only those in categoryID when it is set.
func (c *Catalog) ListProducts(ctx context.Context, categoryID *int64) ([]models.Product, error) {
	q := c.db.WithContext(ctx).Model(&models.Product{})
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var products []models.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

// SearchProducts matches term against name or reference number, case-insensitive,
// and only returns products that are in stock.
func (c *Catalog) SearchProducts(ctx context.Context, term string, categoryID *int64) ([]models.Product, error) {
	like := "%" + escapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
	q := c.db.WithContext(ctx).Model(&models.Product{}).
		Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(ref_number) LIKE ? ESCAPE '!')", like, like).
		Where("quantity > 0")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var products []models.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (c *Catalog) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := c.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, ErrProductNotFound
	}
	return p, err
}

// StockCount returns the live stock of a product; unknown products have none.
func (c *Catalog) StockCount(ctx context.Context, productID int64) (int, error) {
	n, err := c.FindStock(ctx, productID)
	if errors.Is(err, ErrProductNotFound) {
		return 0, nil
	}
	return n, err
}

// FindStock is StockCount but reports missing products as ErrProductNotFound.
func (c *Catalog) FindStock(ctx context.Context, productID int64) (int, error) {
	return stockOf(c.db.WithContext(ctx), productID)
}

func (c *Catalog) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	cat := models.Category{Name: strings.TrimSpace(name)}
	if cat.Name == "" {
		return cat, errors.New("category name is required")
	}
	err := c.db.WithContext(ctx).Create(&cat).Error
	return cat, err
}

// AddProduct inserts p with an initial stock of quantity and returns the saved copy.
func (c *Catalog) AddProduct(ctx context.Context, p models.Product, quantity int) (models.Product, error) {
	if p.IsSaved() {
		return p, errors.New("product is already saved")
	}
	if err := c.checkCategory(ctx, p.CategoryID); err != nil {
		return p, err
	}
	p.Quantity = quantity
	p.Price = p.Price.Round(2)
	err := c.db.WithContext(ctx).Create(&p).Error
	return p, err
}

// UpdateProduct overwrites all fields of an existing product, including its stock.
func (c *Catalog) UpdateProduct(ctx context.Context, p models.Product, quantity int) (models.Product, error) {
	if !p.IsSaved() {
		return p, ErrProductNotFound
	}
	if err := c.checkCategory(ctx, p.CategoryID); err != nil {
		return p, err
	}
	p.Quantity = quantity
	p.Price = p.Price.Round(2)
	res := c.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"price":       p.Price,
			"ref_number":  p.RefNumber,
			"brand":       p.Brand,
			"image_path":  p.ImagePath,
			"quantity":    p.Quantity,
			"category_id": p.CategoryID,
		})
	if res.Error != nil {
		return p, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := c.GetProduct(ctx, p.ID); err != nil {
			return p, err
		}
	}
	return p, nil
}

// RemoveProduct deletes a product. Past sale lines keep their snapshot.
func (c *Catalog) RemoveProduct(ctx context.Context, id int64) error {
	res := c.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (c *Catalog) checkCategory(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}
	var n int64
	if err := c.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func stockOf(db *gorm.DB, productID int64) (int, error) {
	var p models.Product
	err := db.Select("id", "quantity").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrProductNotFound
	}
	return p.Quantity, err
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
