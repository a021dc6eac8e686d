package handlers

import (
	"net/http"
	"time"

	"go-pos-terminal/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route of the terminal.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(h.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	if h.opts.AllowRegistration {
		r.POST("/register", h.Register)
	}
	if h.opts.UploadDir != "" {
		r.Static("/uploads", h.opts.UploadDir)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		api.GET("/categories", h.GetCategories)
		api.GET("/products", h.GetProducts)

		api.GET("/cart", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.PUT("/cart/:productID", h.SetCartQuantity)
		api.DELETE("/cart/:productID", h.RemoveFromCart)
		api.DELETE("/cart", h.ClearCart)

		api.POST("/checkout", h.Checkout)

		admin := api.Group("/")
		admin.Use(middleware.RequireRole(RoleAdmin))
		{
			admin.POST("/categories", h.AddCategory)
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/upload", h.UploadImage)

			admin.GET("/reports/sales", h.GetSales)
			admin.GET("/reports/sales.csv", h.ExportSales)
			admin.GET("/reports/sales/:id/items", h.GetSaleItems)
			admin.GET("/reports/summary", h.GetSummary)
			admin.GET("/reports/top", h.GetTopSelling)
			admin.GET("/reports/valuation", h.GetStockValuation)
		}
	}
	return r
}
