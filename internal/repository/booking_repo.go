package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

// StatusTransition is one atomic booking state change: the booking row update,
// the audit row, and any derived invoice work commit together or not at all.
type StatusTransition struct {
	BookingID         int
	From              db.BookingStatus
	To                db.BookingStatus
	UpdatedBy         int
	Notes             string
	ActualCost        *decimal.Decimal
	StartedAt         *time.Time
	CompletedAt       *time.Time
	AssignMechanicID  *int        // assignment rides the same CAS as the status change
	Invoice           *db.Invoice // lazily created when entering accepted/completed
	CancelPaidInvoice bool
}

func (r *BookingRepository) Create(b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(customer_id, service_center_id, vehicle_id, service_id, mechanic_id, booking_date,
		 preferred_time_slot, status, problem_description, notes, estimated_cost, actual_cost,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query,
		b.CustomerID, b.ServiceCenterID, b.VehicleID, b.ServiceID, b.MechanicID, b.BookingDate,
		b.PreferredTimeSlot, b.Status, b.ProblemDescription, b.Notes, b.EstimatedCost, b.ActualCost,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(id int) (*db.Booking, error) {
	var b db.Booking
	query := `
		SELECT id, customer_id, service_center_id, vehicle_id, service_id, mechanic_id, booking_date,
		       preferred_time_slot, status, problem_description, notes, estimated_cost, actual_cost,
		       service_started_at, service_completed_at, created_at, updated_at
		FROM bookings WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&b.ID, &b.CustomerID, &b.ServiceCenterID, &b.VehicleID, &b.ServiceID, &b.MechanicID,
		&b.BookingDate, &b.PreferredTimeSlot, &b.Status, &b.ProblemDescription, &b.Notes,
		&b.EstimatedCost, &b.ActualCost, &b.ServiceStartedAt, &b.ServiceCompletedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("booking not found")
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return &b, nil
}

const bookingDetailQuery = `
	SELECT b.id, b.status, b.customer_id, u.username,
	       b.service_center_id, sc.name,
	       b.vehicle_id, v.brand || ' ' || v.model, v.registration_number,
	       b.service_id, s.name,
	       b.mechanic_id, COALESCE(m.name, ''),
	       b.booking_date, b.preferred_time_slot, b.problem_description, b.notes,
	       b.estimated_cost, b.actual_cost, b.service_started_at, b.service_completed_at,
	       b.created_at, b.updated_at
	FROM bookings b
	JOIN users u ON u.id = b.customer_id
	JOIN service_centers sc ON sc.id = b.service_center_id
	JOIN vehicles v ON v.id = b.vehicle_id
	JOIN services s ON s.id = b.service_id
	LEFT JOIN mechanics m ON m.id = b.mechanic_id`

func scanBookingDetail(scanner interface{ Scan(...interface{}) error }) (*entities.BookingResponse, error) {
	var res entities.BookingResponse
	err := scanner.Scan(
		&res.ID, &res.Status, &res.CustomerID, &res.CustomerName,
		&res.ServiceCenterID, &res.ServiceCenterName,
		&res.VehicleID, &res.VehicleLabel, &res.RegistrationNumber,
		&res.ServiceID, &res.ServiceName,
		&res.MechanicID, &res.MechanicName,
		&res.BookingDate, &res.PreferredTimeSlot, &res.ProblemDescription, &res.Notes,
		&res.EstimatedCost, &res.ActualCost, &res.ServiceStartedAt, &res.ServiceCompletedAt,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *BookingRepository) GetDetail(id int) (*entities.BookingResponse, error) {
	res, err := scanBookingDetail(r.DB.QueryRow(bookingDetailQuery+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("booking not found")
		}
		return nil, fmt.Errorf("error querying booking detail: %w", err)
	}
	return res, nil
}

func (r *BookingRepository) list(where string, args ...interface{}) ([]entities.BookingResponse, error) {
	rows, err := r.DB.Query(bookingDetailQuery+where+` ORDER BY b.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []entities.BookingResponse
	for rows.Next() {
		res, err := scanBookingDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *res)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) ListByCustomer(customerID int, status string) ([]entities.BookingResponse, error) {
	if status != "" {
		return r.list(` WHERE b.customer_id = $1 AND b.status = $2`, customerID, status)
	}
	return r.list(` WHERE b.customer_id = $1`, customerID)
}

func (r *BookingRepository) ListByCenter(centerID int, status string) ([]entities.BookingResponse, error) {
	if status != "" {
		return r.list(` WHERE b.service_center_id = $1 AND b.status = $2`, centerID, status)
	}
	return r.list(` WHERE b.service_center_id = $1`, centerID)
}

func (r *BookingRepository) ListByMechanic(mechanicID int, status string) ([]entities.BookingResponse, error) {
	if status != "" {
		return r.list(` WHERE b.mechanic_id = $1 AND b.status = $2`, mechanicID, status)
	}
	return r.list(` WHERE b.mechanic_id = $1`, mechanicID)
}

// TransitionStatus applies one state change atomically. The booking row update
// is guarded by the expected current status so two concurrent transitions
// cannot both win; the invoice insert is guarded by the unique booking_id
// constraint so at most one invoice ever exists per booking.
func (r *BookingRepository) TransitionStatus(t StatusTransition) error {
	return withTx(r.DB, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE bookings
			SET status = $1,
			    notes = COALESCE(NULLIF($2, ''), notes),
			    actual_cost = COALESCE($3, actual_cost),
			    service_started_at = COALESCE($4, service_started_at),
			    service_completed_at = COALESCE($5, service_completed_at),
			    mechanic_id = COALESCE($6, mechanic_id),
			    updated_at = NOW()
			WHERE id = $7 AND status = $8`,
			t.To, t.Notes, t.ActualCost, t.StartedAt, t.CompletedAt, t.AssignMechanicID, t.BookingID, t.From,
		)
		if err != nil {
			return fmt.Errorf("error updating booking status: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.ErrConflict("booking status changed concurrently")
		}

		if _, err := tx.Exec(`
			INSERT INTO booking_status_updates (booking_id, status, updated_by, notes, created_at)
			VALUES ($1, $2, $3, $4, NOW())`,
			t.BookingID, t.To, t.UpdatedBy, t.Notes,
		); err != nil {
			return fmt.Errorf("error recording status update: %w", err)
		}

		if t.Invoice != nil {
			if err := insertInvoiceIfAbsent(tx, t.Invoice); err != nil {
				return err
			}
		}

		if t.CancelPaidInvoice {
			if _, err := tx.Exec(`
				UPDATE invoices SET payment_status = $1
				WHERE booking_id = $2 AND payment_status = $3`,
				db.PaymentCancelled, t.BookingID, db.PaymentPaid,
			); err != nil {
				return fmt.Errorf("error cancelling invoice: %w", err)
			}
		}
		return nil
	})
}

// insertInvoiceIfAbsent is the idempotent lazy-creation path: the unique
// constraint on invoices.booking_id makes a second insert a no-op.
func insertInvoiceIfAbsent(tx *sql.Tx, inv *db.Invoice) error {
	_, err := tx.Exec(`
		INSERT INTO invoices
		(booking_id, invoice_number, customer_id, service_center_id, subtotal, tax_rate,
		 tax_amount, discount, total, payment_status, notes, issued_at, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12)
		ON CONFLICT (booking_id) DO NOTHING`,
		inv.BookingID, inv.InvoiceNumber, inv.CustomerID, inv.ServiceCenterID,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Discount, inv.Total,
		inv.PaymentStatus, inv.Notes, inv.DueDate,
	)
	if err != nil {
		return fmt.Errorf("error creating invoice: %w", err)
	}
	return nil
}

func (r *BookingRepository) AssignMechanic(bookingID, mechanicID int) error {
	result, err := r.DB.Exec(
		`UPDATE bookings SET mechanic_id = $1, updated_at = NOW() WHERE id = $2`,
		mechanicID, bookingID,
	)
	if err != nil {
		return fmt.Errorf("error assigning mechanic: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("booking not found")
	}
	return nil
}

func (r *BookingRepository) ListStatusUpdates(bookingID int) ([]entities.StatusUpdateResponse, error) {
	query := `
		SELECT su.status, u.username, su.notes, su.created_at
		FROM booking_status_updates su
		JOIN users u ON u.id = su.updated_by
		WHERE su.booking_id = $1
		ORDER BY su.created_at DESC`
	rows, err := r.DB.Query(query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("error listing status updates: %w", err)
	}
	defer rows.Close()

	var updates []entities.StatusUpdateResponse
	for rows.Next() {
		var u entities.StatusUpdateResponse
		if err := rows.Scan(&u.Status, &u.UpdatedBy, &u.Notes, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning status update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// CreateFeedback inserts the feedback row and recomputes the owning center's
// running average rating and review count in the same transaction.
func (r *BookingRepository) CreateFeedback(fb *db.Feedback) error {
	return withTx(r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO feedback (booking_id, customer_id, service_center_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, created_at`,
			fb.BookingID, fb.CustomerID, fb.ServiceCenterID, fb.Rating, fb.Comment,
		).Scan(&fb.ID, &fb.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrConflict("feedback already submitted for this booking")
			}
			return fmt.Errorf("error creating feedback: %w", err)
		}

		if _, err := tx.Exec(`
			UPDATE service_centers
			SET rating = (SELECT ROUND(AVG(rating), 2) FROM feedback WHERE service_center_id = $1),
			    total_reviews = (SELECT COUNT(*) FROM feedback WHERE service_center_id = $1),
			    updated_at = NOW()
			WHERE id = $1`,
			fb.ServiceCenterID,
		); err != nil {
			return fmt.Errorf("error updating center rating: %w", err)
		}
		return nil
	})
}

func (r *BookingRepository) GetFeedbackByBookingID(bookingID int) (*db.Feedback, error) {
	var fb db.Feedback
	query := `
		SELECT id, booking_id, customer_id, service_center_id, rating, comment, created_at
		FROM feedback WHERE booking_id = $1`
	err := r.DB.QueryRow(query, bookingID).Scan(
		&fb.ID, &fb.BookingID, &fb.CustomerID, &fb.ServiceCenterID, &fb.Rating, &fb.Comment, &fb.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("feedback not found")
		}
		return nil, fmt.Errorf("error querying feedback: %w", err)
	}
	return &fb, nil
}
