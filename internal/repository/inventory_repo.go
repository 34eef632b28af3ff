package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

type InventoryRepository struct {
	DB *sql.DB
}

func NewInventoryRepository(database *sql.DB) *InventoryRepository {
	return &InventoryRepository{DB: database}
}

// CreatePart writes the part and, when it starts with stock, the initial
// ledger entry in the same transaction so quantity and ledger never diverge.
func (r *InventoryRepository) CreatePart(p *db.SparePart, createdBy int) error {
	return withTx(r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO spare_parts
			(service_center_id, name, part_number, description, category, supplier, unit_price, quantity, min_stock_level, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			RETURNING id, created_at, updated_at`,
			p.ServiceCenterID, p.Name, p.PartNumber, p.Description, p.Category,
			p.Supplier, p.UnitPrice, p.Quantity, p.MinStockLevel,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrConflict("part number already exists for this center")
			}
			return fmt.Errorf("error creating spare part: %w", err)
		}

		if p.Quantity > 0 {
			if _, err := tx.Exec(`
				INSERT INTO inventory_transactions (spare_part_id, transaction_type, quantity, unit_price, notes, created_by, created_at)
				VALUES ($1, $2, $3, $4, 'Initial stock', $5, NOW())`,
				p.ID, db.TxnIn, p.Quantity, p.UnitPrice, createdBy,
			); err != nil {
				return fmt.Errorf("error recording initial stock: %w", err)
			}
		}
		return nil
	})
}

func (r *InventoryRepository) UpdatePart(p *db.SparePart) error {
	result, err := r.DB.Exec(`
		UPDATE spare_parts
		SET name = $1, part_number = $2, description = $3, category = $4, supplier = $5,
		    unit_price = $6, min_stock_level = $7, updated_at = NOW()
		WHERE id = $8 AND service_center_id = $9`,
		p.Name, p.PartNumber, p.Description, p.Category, p.Supplier,
		p.UnitPrice, p.MinStockLevel, p.ID, p.ServiceCenterID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict("part number already exists for this center")
		}
		return fmt.Errorf("error updating spare part: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("spare part not found")
	}
	return nil
}

func (r *InventoryRepository) GetPartByID(id int) (*db.SparePart, error) {
	var p db.SparePart
	query := `
		SELECT id, service_center_id, name, part_number, description, category, supplier,
		       unit_price, quantity, min_stock_level, created_at, updated_at
		FROM spare_parts WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&p.ID, &p.ServiceCenterID, &p.Name, &p.PartNumber, &p.Description, &p.Category,
		&p.Supplier, &p.UnitPrice, &p.Quantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("spare part not found")
		}
		return nil, fmt.Errorf("error querying spare part: %w", err)
	}
	return &p, nil
}

func (r *InventoryRepository) ListParts(centerID int, lowStockOnly bool) ([]db.SparePart, error) {
	query := `
		SELECT id, service_center_id, name, part_number, description, category, supplier,
		       unit_price, quantity, min_stock_level, created_at, updated_at
		FROM spare_parts WHERE service_center_id = $1`
	if lowStockOnly {
		query += ` AND quantity <= min_stock_level`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query, centerID)
	if err != nil {
		return nil, fmt.Errorf("error listing spare parts: %w", err)
	}
	defer rows.Close()

	var parts []db.SparePart
	for rows.Next() {
		var p db.SparePart
		if err := rows.Scan(
			&p.ID, &p.ServiceCenterID, &p.Name, &p.PartNumber, &p.Description, &p.Category,
			&p.Supplier, &p.UnitPrice, &p.Quantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning spare part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ApplyTransaction mutates the live quantity and appends the matching ledger
// row in one transaction. The `out` path is a conditional update, not a
// check-then-act: the WHERE clause rejects an overdraw even against
// concurrent writers.
func (r *InventoryRepository) ApplyTransaction(txn *db.InventoryTransaction) (int, error) {
	var newQuantity int
	err := withTx(r.DB, func(tx *sql.Tx) error {
		var err error
		switch txn.TransactionType {
		case db.TxnIn:
			err = tx.QueryRow(`
				UPDATE spare_parts SET quantity = quantity + $1, updated_at = NOW()
				WHERE id = $2 RETURNING quantity`,
				txn.Quantity, txn.SparePartID,
			).Scan(&newQuantity)
		case db.TxnOut:
			err = tx.QueryRow(`
				UPDATE spare_parts SET quantity = quantity - $1, updated_at = NOW()
				WHERE id = $2 AND quantity >= $1 RETURNING quantity`,
				txn.Quantity, txn.SparePartID,
			).Scan(&newQuantity)
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.ErrConflict("insufficient stock")
			}
		case db.TxnAdjustment:
			// An adjustment sets the absolute quantity, not a delta.
			err = tx.QueryRow(`
				UPDATE spare_parts SET quantity = $1, updated_at = NOW()
				WHERE id = $2 RETURNING quantity`,
				txn.Quantity, txn.SparePartID,
			).Scan(&newQuantity)
		default:
			return apperrors.ErrValidation("invalid transaction type")
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.ErrNotFound("spare part not found")
			}
			return fmt.Errorf("error updating stock: %w", err)
		}

		if err := tx.QueryRow(`
			INSERT INTO inventory_transactions (spare_part_id, transaction_type, quantity, unit_price, notes, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING id, created_at`,
			txn.SparePartID, txn.TransactionType, txn.Quantity, txn.UnitPrice, txn.Notes, txn.CreatedBy,
		).Scan(&txn.ID, &txn.CreatedAt); err != nil {
			return fmt.Errorf("error recording inventory transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newQuantity, nil
}

func (r *InventoryRepository) ListTransactions(partID int) ([]db.InventoryTransaction, error) {
	rows, err := r.DB.Query(`
		SELECT id, spare_part_id, transaction_type, quantity, unit_price, notes, created_by, created_at
		FROM inventory_transactions WHERE spare_part_id = $1 ORDER BY created_at DESC`, partID)
	if err != nil {
		return nil, fmt.Errorf("error listing inventory transactions: %w", err)
	}
	defer rows.Close()

	var txns []db.InventoryTransaction
	for rows.Next() {
		var t db.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.SparePartID, &t.TransactionType, &t.Quantity, &t.UnitPrice, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning inventory transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
