// Package checkout turns a cart total and the operator's payment input into a
// PaymentOutcome. It performs no I/O.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("please enter a valid amount for cash tendered")
	ErrInsufficientPayment = errors.New("the amount tendered is less than the total payable")
	ErrUnknownCardType     = errors.New("unknown card type")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrInvalidState        = errors.New("checkout is not waiting for this step")
)

type State int

const (
	AwaitingMethodChoice State = iota
	AwaitingDetails
	Validated
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingMethodChoice:
		return "awaiting_method_choice"
	case AwaitingDetails:
		return "awaiting_details"
	case Validated:
		return "validated"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Validated || s == Cancelled
}

// CardType is one of the accepted card brands.
type CardType string

const (
	CardVisa       CardType = "Visa"
	CardMastercard CardType = "Mastercard"
	CardAmex       CardType = "Amex"
	CardDiscover   CardType = "Discover"
)

// CardTypes lists the accepted brands in display order.
var CardTypes = []CardType{CardVisa, CardMastercard, CardAmex, CardDiscover}

// ParseCardType matches s against CardTypes, ignoring case and surrounding space.
func ParseCardType(s string) (CardType, error) {
	s = strings.TrimSpace(s)
	for _, ct := range CardTypes {
		if strings.EqualFold(string(ct), s) {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCardType, s)
}

// ParseMethod maps "cash"/"card" onto models.PaymentMethod.
func ParseMethod(s string) (models.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return models.PaymentCash, nil
	case "card":
		return models.PaymentCard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Negotiation is one checkout attempt over a fixed total.
// Errors leave it in AwaitingDetails so the operator can correct the input.
type Negotiation struct {
	total   decimal.Decimal
	state   State
	method  models.PaymentMethod
	outcome PaymentOutcome
}

// New starts a negotiation; total is rounded half-up to cents.
func New(total decimal.Decimal) *Negotiation {
	return &Negotiation{total: total.Round(2), state: AwaitingMethodChoice}
}

func (n *Negotiation) Total() decimal.Decimal { return n.total }
func (n *Negotiation) State() State           { return n.state }

// Method is the chosen method, empty before ChooseMethod.
func (n *Negotiation) Method() models.PaymentMethod { return n.method }

// Outcome is meaningful once the negotiation is terminal.
func (n *Negotiation) Outcome() PaymentOutcome { return n.outcome }

// ChooseMethod selects the payment method. The choice can be changed while
// details are still pending.
func (n *Negotiation) ChooseMethod(m models.PaymentMethod) error {
	if n.state.Terminal() {
		return ErrInvalidState
	}
	switch m {
	case models.PaymentCash, models.PaymentCard:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	n.method = m
	n.state = AwaitingDetails
	return nil
}

// SubmitCash validates the tendered amount as typed by the operator.
func (n *Negotiation) SubmitCash(tendered string) (PaymentOutcome, error) {
	if n.state != AwaitingDetails || n.method != models.PaymentCash {
		return PaymentOutcome{}, ErrInvalidState
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(tendered))
	if err != nil || amount.IsNegative() {
		return PaymentOutcome{}, ErrInvalidAmount
	}
	if amount.LessThan(n.total) {
		return PaymentOutcome{}, ErrInsufficientPayment
	}

	n.outcome = CashOutcome(n.total, amount)
	n.state = Validated
	return n.outcome, nil
}

// SubmitCard accepts any card from the closed set. Funds are not verified.
func (n *Negotiation) SubmitCard(cardType string) (PaymentOutcome, error) {
	if n.state != AwaitingDetails || n.method != models.PaymentCard {
		return PaymentOutcome{}, ErrInvalidState
	}

	ct, err := ParseCardType(cardType)
	if err != nil {
		return PaymentOutcome{}, err
	}

	n.outcome = CardOutcome(n.total, ct)
	n.state = Validated
	return n.outcome, nil
}

// Cancel abandons the negotiation. Cancelling a finished negotiation is an error;
// cancelling twice is not.
func (n *Negotiation) Cancel() (PaymentOutcome, error) {
	if n.state == Validated {
		return n.outcome, ErrInvalidState
	}
	n.outcome = CancelledOutcome()
	n.state = Cancelled
	return n.outcome, nil
}
