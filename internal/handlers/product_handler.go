package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type productRequest struct {
	Name       string          `json:"name" binding:"required"`
	Price      decimal.Decimal `json:"price"`
	RefNumber  string          `json:"ref_number"`
	Brand      string          `json:"brand"`
	ImagePath  string          `json:"image_path"`
	Quantity   int             `json:"quantity" binding:"min=0"`
	CategoryID int64           `json:"category_id"`
}

func (r productRequest) product(id int64) models.Product {
	return models.Product{
		ID:         id,
		Name:       strings.TrimSpace(r.Name),
		Price:      r.Price,
		RefNumber:  strings.TrimSpace(r.RefNumber),
		Brand:      strings.TrimSpace(r.Brand),
		ImagePath:  r.ImagePath,
		CategoryID: r.CategoryID,
	}
}

func bindProduct(c *gin.Context) (productRequest, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return req, false
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return req, false
	}
	return req, true
}

// GET /api/categories
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GET /api/products?category=&q=
// With q set only in-stock matches are returned, as on the sales screen.
func (h *Handler) GetProducts(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("category"); raw != "" {
		id, err := cast.ToInt64E(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		categoryID = &id
	}

	var (
		products []models.Product
		err      error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		products, err = h.catalog.SearchProducts(c.Request.Context(), q, categoryID)
	} else {
		products, err = h.catalog.ListProducts(c.Request.Context(), categoryID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) AddCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category likely already exists"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) AddProduct(c *gin.Context) {
	req, ok := bindProduct(c)
	if !ok {
		return
	}
	product, err := h.catalog.AddProduct(c.Request.Context(), req.product(models.UnsavedID), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// PUT /api/products/:id replaces every field, stock included.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindProduct(c)
	if !ok {
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), req.product(id), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// DELETE /api/products/:id. Sales that include the product keep their lines.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.RemoveProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.logger.Info("product removed", zap.Int64("product_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// POST /api/upload stores a product image and returns its public URL.
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	base := filepath.Base(file.Filename)
	if !imageExtensions[strings.ToLower(filepath.Ext(base))] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
		return
	}

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		writeError(c, err)
		return
	}
	// e.g. "1678901234567_burger.jpg"
	filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), base)
	if err := c.SaveUploadedFile(file, filepath.Join(h.opts.UploadDir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"path":    filename,
		"url":     strings.TrimRight(h.opts.BaseURL, "/") + "/uploads/" + filename,
	})
}
