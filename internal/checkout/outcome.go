package checkout

import (
	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
)

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCash
	OutcomeCard
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCash:
		return "cash"
	case OutcomeCard:
		return "card"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "none"
}

type CashPayment struct {
	Tendered decimal.Decimal
	Change   decimal.Decimal
}

type CardPayment struct {
	CardType CardType
}

// PaymentOutcome is the result of a negotiation. Exactly one of Cash and Card
// is set for the matching Kind; neither is set when cancelled.
// Build it with CashOutcome, CardOutcome or CancelledOutcome.
type PaymentOutcome struct {
	Kind  OutcomeKind
	Total decimal.Decimal
	Cash  *CashPayment
	Card  *CardPayment
}

func CashOutcome(total, tendered decimal.Decimal) PaymentOutcome {
	return PaymentOutcome{
		Kind:  OutcomeCash,
		Total: total,
		Cash:  &CashPayment{Tendered: tendered, Change: tendered.Sub(total)},
	}
}

func CardOutcome(total decimal.Decimal, ct CardType) PaymentOutcome {
	return PaymentOutcome{
		Kind:  OutcomeCard,
		Total: total,
		Card:  &CardPayment{CardType: ct},
	}
}

func CancelledOutcome() PaymentOutcome {
	return PaymentOutcome{Kind: OutcomeCancelled}
}

// IsValidated reports whether the outcome may be committed as a sale.
func (o PaymentOutcome) IsValidated() bool {
	switch o.Kind {
	case OutcomeCash:
		return o.Cash != nil && o.Card == nil && !o.Cash.Tendered.LessThan(o.Total)
	case OutcomeCard:
		return o.Card != nil && o.Cash == nil
	}
	return false
}

// Method maps the outcome to the stored payment tag; empty when not validated.
func (o PaymentOutcome) Method() models.PaymentMethod {
	switch o.Kind {
	case OutcomeCash:
		return models.PaymentCash
	case OutcomeCard:
		return models.PaymentCard
	}
	return ""
}
