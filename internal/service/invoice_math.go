package service

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// fallbackTaxRate applies when no TAX_RATE override is configured.
var fallbackTaxRate = decimal.NewFromInt(18)

// DefaultTaxRate is the percentage applied to lazily created invoices.
func DefaultTaxRate() decimal.Decimal {
	raw := os.Getenv("TAX_RATE")
	if raw == "" {
		return fallbackTaxRate
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return fallbackTaxRate
	}
	return rate
}

// ComputeInvoiceTotals derives the tax amount and total from the subtotal,
// discount and percentage tax rate. Both results are quantized to 2 decimal
// places; totals are never hand-edited after this.
func ComputeInvoiceTotals(subtotal, discount, taxRate decimal.Decimal) (taxAmount, total decimal.Decimal) {
	base := subtotal.Sub(discount)
	taxAmount = base.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	total = base.Add(taxAmount).Round(2)
	return taxAmount, total
}

// NewInvoiceNumber builds a globally unique invoice number. The booking id
// keeps it traceable, the timestamp keeps retries distinct.
func NewInvoiceNumber(bookingID int) string {
	return fmt.Sprintf("INV-%d-%s", bookingID, time.Now().UTC().Format("20060102150405"))
}
