package handlers

import (
	"net/http"

	"go-pos-terminal/internal/cart"
	"go-pos-terminal/internal/session"

	"github.com/gin-gonic/gin"
)

type cartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Lines      []cartLineView `json:"lines"`
	Total      string         `json:"total"`
	Currency   string         `json:"currency"`
	InCheckout bool           `json:"in_checkout"`
}

func (h *Handler) viewCart(s *session.Session) cartView {
	lines := s.Lines()
	v := cartView{
		Lines:      make([]cartLineView, 0, len(lines)),
		Total:      s.Total(),
		Currency:   h.opts.CurrencySymbol,
		InCheckout: s.Checkout() != nil,
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, cartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  cart.RoundMoney(l.Subtotal()).StringFixed(2),
		})
	}
	return v
}

// respondCart runs fn on the session and answers with the resulting cart.
func (h *Handler) respondCart(c *gin.Context, fn func(s *session.Session) error) {
	var view cartView
	err := h.terminal.Do(func(s *session.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		view = h.viewCart(s)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetCart(c *gin.Context) {
	h.respondCart(c, func(*session.Session) error { return nil })
}

// POST /api/cart {"product_id": 1, "quantity": 2}; quantity defaults to 1.
func (h *Handler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	h.respondCart(c, func(s *session.Session) error {
		return s.Add(c.Request.Context(), req.ProductID, req.Quantity)
	})
}

// PUT /api/cart/:productID {"quantity": 3}
func (h *Handler) SetCartQuantity(c *gin.Context) {
	id, ok := idParam(c, "productID")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	h.respondCart(c, func(s *session.Session) error {
		return s.SetQuantity(c.Request.Context(), id, req.Quantity)
	})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, ok := idParam(c, "productID")
	if !ok {
		return
	}
	h.respondCart(c, func(s *session.Session) error { return s.Remove(id) })
}

func (h *Handler) ClearCart(c *gin.Context) {
	h.respondCart(c, func(s *session.Session) error { return s.ClearCart() })
}
