package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type SparePartRequest struct {
	Name          string `json:"name"`
	PartNumber    string `json:"part_number"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Supplier      string `json:"supplier"`
	UnitPrice     string `json:"unit_price"` // decimal string
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}

type InventoryTransactionRequest struct {
	TransactionType string `json:"transaction_type"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"` // optional, defaults to the part's price
	Notes           string `json:"notes"`
}

type SparePartResponse struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	PartNumber    string          `json:"part_number,omitempty"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Supplier      string          `json:"supplier,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type InventoryTransactionResponse struct {
	ID              int             `json:"id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}
