package handlers

import (
	"errors"
	"net/http"

	"go-pos-terminal/internal/auth"
	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/checkout"
	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/sale"
	"go-pos-terminal/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options are the presentation settings taken from the config.
type Options struct {
	UploadDir         string
	BaseURL           string
	CurrencySymbol    string
	CORSOrigins       []string
	AllowRegistration bool
}

// Handler serves the terminal over HTTP. All cart and checkout requests go
// through the single Terminal.
type Handler struct {
	catalog  *database.Catalog
	reports  *database.Reports
	users    *database.Users
	terminal *session.Terminal
	tokens   *auth.Tokens
	opts     Options
	logger   *zap.Logger
}

func New(catalog *database.Catalog, reports *database.Reports, users *database.Users,
	terminal *session.Terminal, tokens *auth.Tokens, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		catalog:  catalog,
		reports:  reports,
		users:    users,
		terminal: terminal,
		tokens:   tokens,
		opts:     opts,
		logger:   logger,
	}
}

// writeError maps domain errors to a status and the {"error": ...} body.
func writeError(c *gin.Context, err error) {
	var stockErr *cart.StockError
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		})
	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, session.ErrCheckoutInProgress),
		errors.Is(err, checkout.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrInsufficientPayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrUnsavedProduct),
		errors.Is(err, checkout.ErrInvalidAmount),
		errors.Is(err, checkout.ErrUnknownCardType),
		errors.Is(err, checkout.ErrUnknownMethod),
		errors.Is(err, sale.ErrEmptyCart),
		errors.Is(err, sale.ErrNotValidated):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sale.ErrCommitFailed):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": sale.ErrCommitFailed.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := cast.ToInt64E(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
