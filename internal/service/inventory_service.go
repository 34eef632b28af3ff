package service

import (
	"github.com/shopspring/decimal"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type inventoryStore interface {
	CreatePart(p *db.SparePart, createdBy int) error
	UpdatePart(p *db.SparePart) error
	GetPartByID(id int) (*db.SparePart, error)
	ListParts(centerID int, lowStockOnly bool) ([]db.SparePart, error)
	ApplyTransaction(txn *db.InventoryTransaction) (int, error)
	ListTransactions(partID int) ([]db.InventoryTransaction, error)
}

// InventoryService keeps each center's spare part stock and its append-only
// movement ledger consistent.
type InventoryService struct {
	Inventory inventoryStore
}

func NewInventoryService(inventory inventoryStore) *InventoryService {
	return &InventoryService{Inventory: inventory}
}

func parsePartRequest(req entities.SparePartRequest) (decimal.Decimal, error) {
	switch {
	case req.Name == "":
		return decimal.Zero, apperrors.ErrValidation("part name is required")
	case req.Quantity < 0:
		return decimal.Zero, apperrors.ErrValidation("quantity cannot be negative")
	case req.MinStockLevel < 0:
		return decimal.Zero, apperrors.ErrValidation("min_stock_level cannot be negative")
	}
	price := decimal.Zero
	if req.UnitPrice != "" {
		var err error
		price, err = decimal.NewFromString(req.UnitPrice)
		if err != nil || price.IsNegative() {
			return decimal.Zero, apperrors.ErrValidation("unit_price must be a non-negative decimal")
		}
	}
	return price.Round(2), nil
}

func (s *InventoryService) CreatePart(actor auth.Actor, req entities.SparePartRequest) (*db.SparePart, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	price, err := parsePartRequest(req)
	if err != nil {
		return nil, err
	}
	part := &db.SparePart{
		ServiceCenterID: actor.Center.ID,
		Name:            req.Name,
		PartNumber:      req.PartNumber,
		Description:     req.Description,
		Category:        req.Category,
		Supplier:        req.Supplier,
		UnitPrice:       price,
		Quantity:        req.Quantity,
		MinStockLevel:   req.MinStockLevel,
	}
	if err := s.Inventory.CreatePart(part, actor.User.ID); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *InventoryService) getOwnedPart(actor auth.Actor, partID int) (*db.SparePart, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	part, err := s.Inventory.GetPartByID(partID)
	if err != nil {
		return nil, err
	}
	if part.ServiceCenterID != actor.Center.ID {
		return nil, apperrors.ErrForbidden("spare part belongs to another center")
	}
	return part, nil
}

// UpdatePart changes descriptive fields only. Stock levels move exclusively
// through RecordTransaction so the ledger stays complete.
func (s *InventoryService) UpdatePart(actor auth.Actor, partID int, req entities.SparePartRequest) (*db.SparePart, error) {
	part, err := s.getOwnedPart(actor, partID)
	if err != nil {
		return nil, err
	}
	price, err := parsePartRequest(req)
	if err != nil {
		return nil, err
	}
	part.Name = req.Name
	part.PartNumber = req.PartNumber
	part.Description = req.Description
	part.Category = req.Category
	part.Supplier = req.Supplier
	part.UnitPrice = price
	part.MinStockLevel = req.MinStockLevel
	if err := s.Inventory.UpdatePart(part); err != nil {
		return nil, err
	}
	return s.Inventory.GetPartByID(partID)
}

func (s *InventoryService) GetPart(actor auth.Actor, partID int) (*db.SparePart, error) {
	return s.getOwnedPart(actor, partID)
}

func (s *InventoryService) ListParts(actor auth.Actor, lowStockOnly bool) ([]db.SparePart, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	return s.Inventory.ListParts(actor.Center.ID, lowStockOnly)
}

// RecordTransaction applies a stock movement and returns the part with its
// new quantity. An "out" larger than the current stock is rejected without
// touching the part or the ledger.
func (s *InventoryService) RecordTransaction(actor auth.Actor, partID int, req entities.InventoryTransactionRequest) (*db.SparePart, error) {
	part, err := s.getOwnedPart(actor, partID)
	if err != nil {
		return nil, err
	}

	txnType := db.TransactionType(req.TransactionType)
	if !txnType.Valid() {
		return nil, apperrors.ErrValidation("transaction_type must be in, out or adjustment")
	}
	if req.Quantity < 0 || (txnType != db.TxnAdjustment && req.Quantity == 0) {
		return nil, apperrors.ErrValidation("quantity must be positive")
	}

	unitPrice := part.UnitPrice
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, apperrors.ErrValidation("unit_price must be a non-negative decimal")
		}
		unitPrice = unitPrice.Round(2)
	}

	txn := &db.InventoryTransaction{
		SparePartID:     part.ID,
		TransactionType: txnType,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		Notes:           req.Notes,
		CreatedBy:       actor.User.ID,
	}
	newQuantity, err := s.Inventory.ApplyTransaction(txn)
	if err != nil {
		return nil, err
	}
	part.Quantity = newQuantity
	return part, nil
}

func (s *InventoryService) ListTransactions(actor auth.Actor, partID int) ([]db.InventoryTransaction, error) {
	if _, err := s.getOwnedPart(actor, partID); err != nil {
		return nil, err
	}
	return s.Inventory.ListTransactions(partID)
}

// ReconcileLedger replays a part's ledger oldest-first and returns the stock
// level it implies. Adjustments reset the level, in and out apply deltas.
func ReconcileLedger(transactions []db.InventoryTransaction) int {
	quantity := 0
	for _, txn := range transactions {
		switch txn.TransactionType {
		case db.TxnIn:
			quantity += txn.Quantity
		case db.TxnOut:
			quantity -= txn.Quantity
		case db.TxnAdjustment:
			quantity = txn.Quantity
		}
	}
	return quantity
}
