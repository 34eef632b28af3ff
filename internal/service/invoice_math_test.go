package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeInvoiceTotals(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  string
		discount  string
		taxRate   string
		taxAmount string
		total     string
	}{
		{"default rate", "1500.00", "0", "18", "270.00", "1770.00"},
		{"with discount", "1500.00", "100.00", "18", "252.00", "1652.00"},
		{"rounding half up", "33.33", "0", "18", "6.00", "39.33"},
		{"fractional rate", "200.00", "0", "12.5", "25.00", "225.00"},
		{"zero rate", "500.00", "0", "0", "0.00", "500.00"},
		{"zero subtotal", "0", "0", "18", "0.00", "0.00"},
		{"repeating decimal quantized", "10.01", "0", "17", "1.70", "11.71"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taxAmount, total := ComputeInvoiceTotals(dec(tt.subtotal), dec(tt.discount), dec(tt.taxRate))
			assert.True(t, dec(tt.taxAmount).Equal(taxAmount), "tax: want %s got %s", tt.taxAmount, taxAmount)
			assert.True(t, dec(tt.total).Equal(total), "total: want %s got %s", tt.total, total)
		})
	}
}

func TestDefaultTaxRate(t *testing.T) {
	assert.True(t, DefaultTaxRate().Equal(dec("18")))

	t.Setenv("TAX_RATE", "12.5")
	assert.True(t, DefaultTaxRate().Equal(dec("12.5")))

	t.Setenv("TAX_RATE", "-3")
	assert.True(t, DefaultTaxRate().Equal(dec("18")))

	t.Setenv("TAX_RATE", "not-a-number")
	assert.True(t, DefaultTaxRate().Equal(dec("18")))
}

func TestNewInvoiceNumber(t *testing.T) {
	number := NewInvoiceNumber(42)
	require.True(t, strings.HasPrefix(number, "INV-42-"))
	assert.Len(t, number, len("INV-42-")+14)
}
