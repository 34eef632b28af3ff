package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"` // decimal string
}

type GenerateInvoiceRequest struct {
	Subtotal string               `json:"subtotal"` // optional, defaults to the booking cost basis
	TaxRate  string               `json:"tax_rate"` // optional, defaults to the configured rate
	Discount string               `json:"discount"`
	DueDate  *time.Time           `json:"due_date"`
	Notes    string               `json:"notes"`
	Items    []InvoiceItemRequest `json:"items"`
}

type PaymentRequest struct {
	Amount        string `json:"amount"` // decimal string
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
	Notes         string `json:"notes"`
}

type InvoiceItemResponse struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type PaymentResponse struct {
	ID            int             `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type InvoiceResponse struct {
	ID              int                   `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	BookingID       int                   `json:"booking_id"`
	CustomerID      int                   `json:"customer_id"`
	ServiceCenterID int                   `json:"service_center_id"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxRate         decimal.Decimal       `json:"tax_rate"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	Discount        decimal.Decimal       `json:"discount"`
	Total           decimal.Decimal       `json:"total"`
	PaymentStatus   string                `json:"payment_status"`
	AmountPaid      decimal.Decimal       `json:"amount_paid"`
	Notes           string                `json:"notes,omitempty"`
	IssuedAt        time.Time             `json:"issued_at"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Items           []InvoiceItemResponse `json:"items,omitempty"`
	Payments        []PaymentResponse     `json:"payments,omitempty"`
}
