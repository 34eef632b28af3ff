package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusFor(t *testing.T) {
	total := decimal.NewFromInt(100)

	assert.Equal(t, PaymentPending, PaymentStatusFor(decimal.Zero, total))
	assert.Equal(t, PaymentPartial, PaymentStatusFor(decimal.NewFromInt(40), total))
	assert.Equal(t, PaymentPartial, PaymentStatusFor(decimal.RequireFromString("99.99"), total))
	assert.Equal(t, PaymentPaid, PaymentStatusFor(total, total))
	assert.Equal(t, PaymentPaid, PaymentStatusFor(decimal.NewFromInt(150), total))
}

func TestCostBasis(t *testing.T) {
	estimated := decimal.NewFromInt(1500)
	booking := &Booking{EstimatedCost: estimated}
	assert.True(t, estimated.Equal(booking.CostBasis()))

	actual := decimal.RequireFromString("1725.50")
	booking.ActualCost = &actual
	assert.True(t, actual.Equal(booking.CostBasis()))

	zero := decimal.Zero
	booking.ActualCost = &zero
	assert.True(t, estimated.Equal(booking.CostBasis()), "zero actual cost falls back to the estimate")
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.False(t, StatusCompleted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusReadyForDelivery.Terminal())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, BookingStatus("in_progress").Valid())
	assert.False(t, BookingStatus("repaired").Valid())
	assert.True(t, Role("service_center").Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, TransactionType("adjustment").Valid())
	assert.False(t, TransactionType("restock").Valid())
	assert.True(t, PaymentMethod("upi").Valid())
	assert.False(t, PaymentMethod("barter").Valid())
}
