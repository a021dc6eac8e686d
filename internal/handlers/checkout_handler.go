package handlers

import (
	"net/http"

	"go-pos-terminal/internal/checkout"
	"go-pos-terminal/internal/models"
	"go-pos-terminal/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutRequest carries the operator's payment input. Tendered is the text
// typed in the cash field; CardType is one of the accepted card names.
type CheckoutRequest struct {
	Method   string `json:"method" binding:"required"`
	Tendered string `json:"tendered"`
	CardType string `json:"card_type"`
}

type checkoutResponse struct {
	SaleID   int64  `json:"sale_id"`
	Total    string `json:"total"`
	Method   string `json:"method"`
	Tendered string `json:"tendered,omitempty"`
	Change   string `json:"change,omitempty"`
	CardType string `json:"card_type,omitempty"`
	Currency string `json:"currency"`
}

// POST /api/checkout negotiates payment for the current cart and commits the
// sale. Any failure abandons the checkout and leaves the cart as it was.
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var resp checkoutResponse
	err := h.terminal.Do(func(s *session.Session) error {
		// a checkout left open by an earlier failed request starts over
		s.AbandonCheckout()

		outcome, err := negotiate(s, req)
		if err != nil {
			s.AbandonCheckout()
			return err
		}

		id, err := s.Complete(c.Request.Context())
		if err != nil {
			s.AbandonCheckout()
			return err
		}
		resp = h.receipt(id, outcome)
		return nil
	})
	if err != nil {
		h.logger.Warn("checkout failed", zap.String("method", req.Method), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func negotiate(s *session.Session, req CheckoutRequest) (checkout.PaymentOutcome, error) {
	method, err := checkout.ParseMethod(req.Method)
	if err != nil {
		return checkout.PaymentOutcome{}, err
	}
	n, err := s.BeginCheckout()
	if err != nil {
		return checkout.PaymentOutcome{}, err
	}
	if err := n.ChooseMethod(method); err != nil {
		return checkout.PaymentOutcome{}, err
	}
	if n.Method() == models.PaymentCash {
		return n.SubmitCash(req.Tendered)
	}
	return n.SubmitCard(req.CardType)
}

func (h *Handler) receipt(id int64, o checkout.PaymentOutcome) checkoutResponse {
	resp := checkoutResponse{
		SaleID:   id,
		Total:    o.Total.StringFixed(2),
		Method:   string(o.Method()),
		Currency: h.opts.CurrencySymbol,
	}
	if o.Cash != nil {
		resp.Tendered = o.Cash.Tendered.StringFixed(2)
		resp.Change = o.Cash.Change.StringFixed(2)
	}
	if o.Card != nil {
		resp.CardType = string(o.Card.CardType)
	}
	return resp
}
