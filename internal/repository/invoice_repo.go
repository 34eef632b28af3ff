package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

type InvoiceRepository struct {
	DB *sql.DB
}

func NewInvoiceRepository(database *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{DB: database}
}

// CreateWithItems writes the invoice and its line items in one transaction.
// Item totals are always recomputed from quantity and unit price here;
// callers cannot set them.
func (r *InvoiceRepository) CreateWithItems(inv *db.Invoice, items []db.InvoiceItem) error {
	return withTx(r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO invoices
			(booking_id, invoice_number, customer_id, service_center_id, subtotal, tax_rate,
			 tax_amount, discount, total, payment_status, notes, issued_at, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12)
			RETURNING id, issued_at`,
			inv.BookingID, inv.InvoiceNumber, inv.CustomerID, inv.ServiceCenterID,
			inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Discount, inv.Total,
			inv.PaymentStatus, inv.Notes, inv.DueDate,
		).Scan(&inv.ID, &inv.IssuedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrConflict("invoice already exists for this booking")
			}
			return fmt.Errorf("error creating invoice: %w", err)
		}

		for i := range items {
			item := &items[i]
			item.InvoiceID = inv.ID
			item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			if err := tx.QueryRow(`
				INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, total)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.Total,
			).Scan(&item.ID); err != nil {
				return fmt.Errorf("error creating invoice item: %w", err)
			}
		}
		return nil
	})
}

func (r *InvoiceRepository) GetByID(id int) (*db.Invoice, error) {
	return r.getInvoice(`WHERE id = $1`, id)
}

func (r *InvoiceRepository) GetByBookingID(bookingID int) (*db.Invoice, error) {
	return r.getInvoice(`WHERE booking_id = $1`, bookingID)
}

func (r *InvoiceRepository) getInvoice(where string, arg interface{}) (*db.Invoice, error) {
	var inv db.Invoice
	query := `
		SELECT id, booking_id, invoice_number, customer_id, service_center_id, subtotal, tax_rate,
		       tax_amount, discount, total, payment_status, notes, issued_at, due_date, paid_at
		FROM invoices ` + where
	err := r.DB.QueryRow(query, arg).Scan(
		&inv.ID, &inv.BookingID, &inv.InvoiceNumber, &inv.CustomerID, &inv.ServiceCenterID,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Discount, &inv.Total,
		&inv.PaymentStatus, &inv.Notes, &inv.IssuedAt, &inv.DueDate, &inv.PaidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("invoice not found")
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) ListItems(invoiceID int) ([]db.InvoiceItem, error) {
	rows, err := r.DB.Query(`
		SELECT id, invoice_id, description, quantity, unit_price, total
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []db.InvoiceItem
	for rows.Next() {
		var item db.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, fmt.Errorf("error scanning invoice item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InvoiceRepository) ListPayments(invoiceID int) ([]db.Payment, error) {
	rows, err := r.DB.Query(`
		SELECT id, invoice_id, amount, method, transaction_id, notes, created_at
		FROM payments WHERE invoice_id = $1 ORDER BY created_at DESC`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	var payments []db.Payment
	for rows.Next() {
		var p db.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.TransactionID, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *InvoiceRepository) AmountPaid(invoiceID int) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := r.DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, invoiceID,
	).Scan(&paid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error summing payments: %w", err)
	}
	return paid, nil
}

func (r *InvoiceRepository) list(where string, args ...interface{}) ([]db.Invoice, error) {
	query := `
		SELECT id, booking_id, invoice_number, customer_id, service_center_id, subtotal, tax_rate,
		       tax_amount, discount, total, payment_status, notes, issued_at, due_date, paid_at
		FROM invoices ` + where + ` ORDER BY issued_at DESC`
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []db.Invoice
	for rows.Next() {
		var inv db.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.BookingID, &inv.InvoiceNumber, &inv.CustomerID, &inv.ServiceCenterID,
			&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Discount, &inv.Total,
			&inv.PaymentStatus, &inv.Notes, &inv.IssuedAt, &inv.DueDate, &inv.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) ListByCustomer(customerID int) ([]db.Invoice, error) {
	return r.list(`WHERE customer_id = $1`, customerID)
}

func (r *InvoiceRepository) ListByCenter(centerID int) ([]db.Invoice, error) {
	return r.list(`WHERE service_center_id = $1`, centerID)
}

func (r *InvoiceRepository) ListAll() ([]db.Invoice, error) {
	return r.list(``)
}

// AddPayment appends a payment and recomputes the invoice payment status from
// the payment sum in the same transaction. The invoice row is locked first so
// two concurrent payments serialize and both see a consistent sum.
func (r *InvoiceRepository) AddPayment(p *db.Payment) (db.PaymentStatus, error) {
	var newStatus db.PaymentStatus
	err := withTx(r.DB, func(tx *sql.Tx) error {
		var total decimal.Decimal
		var status db.PaymentStatus
		err := tx.QueryRow(
			`SELECT total, payment_status FROM invoices WHERE id = $1 FOR UPDATE`, p.InvoiceID,
		).Scan(&total, &status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.ErrNotFound("invoice not found")
			}
			return fmt.Errorf("error locking invoice: %w", err)
		}
		if status == db.PaymentCancelled {
			return apperrors.ErrConflict("invoice is cancelled")
		}

		if err := tx.QueryRow(`
			INSERT INTO payments (invoice_id, amount, method, transaction_id, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, created_at`,
			p.InvoiceID, p.Amount, p.Method, p.TransactionID, p.Notes,
		).Scan(&p.ID, &p.CreatedAt); err != nil {
			return fmt.Errorf("error creating payment: %w", err)
		}

		var paid decimal.Decimal
		if err := tx.QueryRow(
			`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, p.InvoiceID,
		).Scan(&paid); err != nil {
			return fmt.Errorf("error summing payments: %w", err)
		}

		newStatus = db.PaymentStatusFor(paid, total)
		var paidAt *time.Time
		if newStatus == db.PaymentPaid {
			now := time.Now().UTC()
			paidAt = &now
		}
		if _, err := tx.Exec(`
			UPDATE invoices SET payment_status = $1, paid_at = COALESCE($2, paid_at) WHERE id = $3`,
			newStatus, paidAt, p.InvoiceID,
		); err != nil {
			return fmt.Errorf("error updating invoice status: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newStatus, nil
}

// SettleOutstanding charges whatever remains on the invoice. The remainder is
// computed under the same row lock that guards the insert, so two concurrent
// settle calls serialize and the loser sees nothing left to pay.
func (r *InvoiceRepository) SettleOutstanding(p *db.Payment) error {
	return withTx(r.DB, func(tx *sql.Tx) error {
		var total decimal.Decimal
		var status db.PaymentStatus
		err := tx.QueryRow(
			`SELECT total, payment_status FROM invoices WHERE id = $1 FOR UPDATE`, p.InvoiceID,
		).Scan(&total, &status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.ErrNotFound("invoice not found")
			}
			return fmt.Errorf("error locking invoice: %w", err)
		}
		if status == db.PaymentCancelled {
			return apperrors.ErrConflict("invoice is cancelled")
		}

		var paid decimal.Decimal
		if err := tx.QueryRow(
			`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, p.InvoiceID,
		).Scan(&paid); err != nil {
			return fmt.Errorf("error summing payments: %w", err)
		}
		outstanding := total.Sub(paid)
		if !outstanding.IsPositive() {
			return apperrors.ErrConflict("invoice is already paid in full")
		}
		p.Amount = outstanding

		if err := tx.QueryRow(`
			INSERT INTO payments (invoice_id, amount, method, transaction_id, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, created_at`,
			p.InvoiceID, p.Amount, p.Method, p.TransactionID, p.Notes,
		).Scan(&p.ID, &p.CreatedAt); err != nil {
			return fmt.Errorf("error creating payment: %w", err)
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(`
			UPDATE invoices SET payment_status = $1, paid_at = COALESCE($2, paid_at) WHERE id = $3`,
			db.PaymentPaid, &now, p.InvoiceID,
		); err != nil {
			return fmt.Errorf("error updating invoice status: %w", err)
		}
		return nil
	})
}
