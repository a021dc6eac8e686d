package checkout

import (
	"testing"

	"go-pos-terminal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cashNegotiation(t *testing.T, total string) *Negotiation {
	t.Helper()
	n := New(dec(total))
	require.NoError(t, n.ChooseMethod(models.PaymentCash))
	return n
}

func TestCashExactTenderGivesZeroChange(t *testing.T) {
	n := cashNegotiation(t, "30.00")

	out, err := n.SubmitCash("30.00")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCash, out.Kind)
	assert.True(t, out.Cash.Change.IsZero())
	assert.Nil(t, out.Card)
	assert.True(t, out.IsValidated())
	assert.Equal(t, Validated, n.State())
}

func TestCashOneCentShortIsInsufficient(t *testing.T) {
	n := cashNegotiation(t, "30.00")

	_, err := n.SubmitCash("29.99")
	require.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Equal(t, AwaitingDetails, n.State())

	// The operator can correct the amount.
	out, err := n.SubmitCash("100")
	require.NoError(t, err)
	assert.True(t, dec("70.00").Equal(out.Cash.Change))
}

func TestCashRejectsMalformedAmounts(t *testing.T) {
	for _, input := range []string{"", "abc", "12,50", "-5", "1.2.3"} {
		n := cashNegotiation(t, "10.00")
		_, err := n.SubmitCash(input)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", input)
		assert.Equal(t, AwaitingDetails, n.State())
	}
}

func TestTotalIsRoundedHalfUp(t *testing.T) {
	n := New(dec("10.005"))
	assert.Equal(t, "10.01", n.Total().StringFixed(2))

	require.NoError(t, n.ChooseMethod(models.PaymentCash))
	_, err := n.SubmitCash("10.00")
	require.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestCardAcceptsClosedSetOnly(t *testing.T) {
	n := New(dec("12.00"))
	require.NoError(t, n.ChooseMethod(models.PaymentCard))

	_, err := n.SubmitCard("Diners")
	require.ErrorIs(t, err, ErrUnknownCardType)

	out, err := n.SubmitCard(" mastercard ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCard, out.Kind)
	assert.Equal(t, CardMastercard, out.Card.CardType)
	assert.Nil(t, out.Cash)
	assert.Equal(t, models.PaymentCard, out.Method())
}

func TestCancelFromEitherState(t *testing.T) {
	n := New(dec("5.00"))
	out, err := n.Cancel()
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, out.Kind)
	assert.False(t, out.IsValidated())

	n = cashNegotiation(t, "5.00")
	_, err = n.Cancel()
	require.NoError(t, err)
	assert.Equal(t, Cancelled, n.State())
	_, err = n.SubmitCash("5.00")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStateGuards(t *testing.T) {
	n := New(dec("5.00"))
	_, err := n.SubmitCash("5.00")
	require.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, n.ChooseMethod(models.PaymentCard))
	_, err = n.SubmitCash("5.00")
	require.ErrorIs(t, err, ErrInvalidState)

	// switching method while details are pending
	require.NoError(t, n.ChooseMethod(models.PaymentCash))
	_, err = n.SubmitCash("5.00")
	require.NoError(t, err)

	require.ErrorIs(t, n.ChooseMethod(models.PaymentCard), ErrInvalidState)
	_, err = n.Cancel()
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, Validated, n.State())

	require.ErrorIs(t, New(dec("1")).ChooseMethod("Cheque"), ErrUnknownMethod)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("CASH")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, m)

	_, err = ParseMethod("bitcoin")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestZeroValueOutcomeIsNotValidated(t *testing.T) {
	assert.False(t, PaymentOutcome{}.IsValidated())
	assert.False(t, PaymentOutcome{Kind: OutcomeCash}.IsValidated())
	assert.Equal(t, models.PaymentMethod(""), CancelledOutcome().Method())
}
