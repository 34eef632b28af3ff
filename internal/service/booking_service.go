package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
	"motorserve/internal/repository"
)

// BookingStore is the persistence surface the booking workflow needs.
// *repository.BookingRepository satisfies it; tests use an in-memory fake.
type BookingStore interface {
	Create(b *db.Booking) error
	GetByID(id int) (*db.Booking, error)
	GetDetail(id int) (*entities.BookingResponse, error)
	ListByCustomer(customerID int, status string) ([]entities.BookingResponse, error)
	ListByCenter(centerID int, status string) ([]entities.BookingResponse, error)
	ListByMechanic(mechanicID int, status string) ([]entities.BookingResponse, error)
	TransitionStatus(t repository.StatusTransition) error
	AssignMechanic(bookingID, mechanicID int) error
	ListStatusUpdates(bookingID int) ([]entities.StatusUpdateResponse, error)
	CreateFeedback(fb *db.Feedback) error
	GetFeedbackByBookingID(bookingID int) (*db.Feedback, error)
}

type vehicleGetter interface {
	GetByID(id int) (*db.Vehicle, error)
}

type serviceGetter interface {
	GetServiceByID(id int) (*db.Service, error)
}

type centerGetter interface {
	GetCenterByID(id int) (*db.ServiceCenter, error)
	GetMechanicByID(id int) (*db.Mechanic, error)
}

type BookingService struct {
	Bookings BookingStore
	Vehicles vehicleGetter
	Catalog  serviceGetter
	Centers  centerGetter
	Notifier Notifier
}

func NewBookingService(bookings BookingStore, vehicles vehicleGetter, catalog serviceGetter, centers centerGetter, notifier Notifier) *BookingService {
	return &BookingService{
		Bookings: bookings,
		Vehicles: vehicles,
		Catalog:  catalog,
		Centers:  centers,
		Notifier: notifier,
	}
}

// Create opens a pending booking. The estimated cost snapshots the catalog
// price at this moment and is never retroactively changed.
func (s *BookingService) Create(actor auth.Actor, req entities.BookingRequest) (*entities.BookingResponse, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.ErrForbidden("only customers can create bookings")
	}
	if req.ProblemDescription == "" {
		return nil, apperrors.ErrValidation("problem description is required")
	}
	if req.BookingDate.IsZero() {
		return nil, apperrors.ErrValidation("booking date is required")
	}

	vehicle, err := s.Vehicles.GetByID(req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.User.ID {
		return nil, apperrors.ErrForbidden("vehicle does not belong to you")
	}

	center, err := s.Centers.GetCenterByID(req.ServiceCenterID)
	if err != nil {
		return nil, err
	}
	if !center.IsActive {
		return nil, apperrors.ErrValidation("service center is not active")
	}

	svc, err := s.Catalog.GetServiceByID(req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ServiceCenterID != center.ID || !svc.IsActive {
		return nil, apperrors.ErrValidation("service is not offered by this center")
	}

	booking := &db.Booking{
		CustomerID:         actor.User.ID,
		ServiceCenterID:    center.ID,
		VehicleID:          vehicle.ID,
		ServiceID:          svc.ID,
		BookingDate:        req.BookingDate,
		PreferredTimeSlot:  req.PreferredTimeSlot,
		Status:             db.StatusPending,
		ProblemDescription: req.ProblemDescription,
		EstimatedCost:      svc.BasePrice.Round(2),
	}
	if err := s.Bookings.Create(booking); err != nil {
		return nil, err
	}

	s.Notifier.Notify(actor.User.ID, "booking", "Booking Confirmed",
		fmt.Sprintf("Your booking #%d for %s has been created successfully.", booking.ID, svc.Name))

	return s.Bookings.GetDetail(booking.ID)
}

func (s *BookingService) Get(actor auth.Actor, id int) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, booking) {
		return nil, apperrors.ErrForbidden("you do not have permission to view this booking")
	}
	return s.Bookings.GetDetail(id)
}

func (s *BookingService) List(actor auth.Actor, status string) ([]entities.BookingResponse, error) {
	if status != "" && !db.BookingStatus(status).Valid() {
		return nil, apperrors.ErrValidation("invalid status filter")
	}
	switch {
	case actor.IsCustomer():
		return s.Bookings.ListByCustomer(actor.User.ID, status)
	case actor.IsCenter():
		if actor.Center == nil {
			return nil, apperrors.ErrNotFound("service center profile not found")
		}
		return s.Bookings.ListByCenter(actor.Center.ID, status)
	case actor.IsMechanic():
		if actor.Mechanic == nil {
			return nil, apperrors.ErrNotFound("mechanic profile not found")
		}
		return s.Bookings.ListByMechanic(actor.Mechanic.ID, status)
	}
	return nil, apperrors.ErrForbidden("role cannot list bookings")
}

// UpdateStatus drives every non-cancellation transition. The booking row,
// the audit entry and any lazily created invoice commit atomically; the
// customer notification is dispatched best-effort afterwards.
func (s *BookingService) UpdateStatus(actor auth.Actor, bookingID int, req entities.StatusUpdateRequest) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	to := db.BookingStatus(req.Status)
	if err := AllowTransition(actor, booking, to); err != nil {
		return nil, err
	}

	var actualCost *decimal.Decimal
	if req.ActualCost != "" {
		cost, err := decimal.NewFromString(req.ActualCost)
		if err != nil || cost.IsNegative() {
			return nil, apperrors.ErrValidation("actual_cost must be a non-negative decimal")
		}
		cost = cost.Round(2)
		actualCost = &cost
	}

	transition := repository.StatusTransition{
		BookingID:  booking.ID,
		From:       booking.Status,
		To:         to,
		UpdatedBy:  actor.User.ID,
		Notes:      req.Notes,
		ActualCost: actualCost,
	}

	now := time.Now().UTC()
	switch to {
	case db.StatusInProgress:
		if booking.ServiceStartedAt == nil {
			transition.StartedAt = &now
		}
	case db.StatusCompleted:
		if booking.ServiceCompletedAt == nil {
			transition.CompletedAt = &now
		}
	}

	// Accepting or completing a booking guarantees the customer an invoice.
	// The insert is idempotent, so a pre-existing invoice stays untouched.
	if to == db.StatusAccepted || to == db.StatusCompleted {
		transition.Invoice = s.buildLazyInvoice(booking, actualCost)
	}

	if req.MechanicID != 0 {
		if err := s.checkMechanic(booking, req.MechanicID); err != nil {
			return nil, err
		}
		mechanicID := req.MechanicID
		transition.AssignMechanicID = &mechanicID
	}

	if err := s.Bookings.TransitionStatus(transition); err != nil {
		return nil, err
	}

	detail, err := s.Bookings.GetDetail(booking.ID)
	if err != nil {
		return nil, err
	}
	s.Notifier.NotifyBooking(booking.CustomerID, detail)
	return detail, nil
}

// Cancel is the customer-driven exit, permitted only before work starts.
// A paid invoice is marked cancelled in the same transaction; no refund is
// recorded, matching the platform's documented gap.
func (s *BookingService) Cancel(actor auth.Actor, bookingID int) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if err := AllowTransition(actor, booking, db.StatusCancelled); err != nil {
		return nil, err
	}

	transition := repository.StatusTransition{
		BookingID:         booking.ID,
		From:              booking.Status,
		To:                db.StatusCancelled,
		UpdatedBy:         actor.User.ID,
		CancelPaidInvoice: true,
	}
	if err := s.Bookings.TransitionStatus(transition); err != nil {
		return nil, err
	}

	detail, err := s.Bookings.GetDetail(booking.ID)
	if err != nil {
		return nil, err
	}
	s.Notifier.NotifyBooking(booking.CustomerID, detail)
	return detail, nil
}

// AssignMechanic attaches or reassigns a mechanic from the booking's own
// center. Terminal bookings are closed to reassignment.
func (s *BookingService) AssignMechanic(actor auth.Actor, bookingID, mechanicID int) (*entities.BookingResponse, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Center == nil || actor.Center.ID != booking.ServiceCenterID {
		return nil, apperrors.ErrForbidden("only the service center can assign mechanics")
	}
	if booking.Status.Terminal() {
		return nil, apperrors.ErrConflict("cannot assign a mechanic to a closed booking")
	}
	if err := s.checkMechanic(booking, mechanicID); err != nil {
		return nil, err
	}
	if err := s.Bookings.AssignMechanic(bookingID, mechanicID); err != nil {
		return nil, err
	}
	return s.Bookings.GetDetail(bookingID)
}

func (s *BookingService) checkMechanic(booking *db.Booking, mechanicID int) error {
	mechanic, err := s.Centers.GetMechanicByID(mechanicID)
	if err != nil {
		return err
	}
	if mechanic.ServiceCenterID != booking.ServiceCenterID {
		return apperrors.ErrValidation("mechanic does not belong to this service center")
	}
	return nil
}

func (s *BookingService) StatusHistory(actor auth.Actor, bookingID int) ([]entities.StatusUpdateResponse, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, booking) {
		return nil, apperrors.ErrForbidden("you do not have permission to view this booking")
	}
	return s.Bookings.ListStatusUpdates(bookingID)
}

// CreateFeedback accepts one rating per completed booking and folds it into
// the center's running average.
func (s *BookingService) CreateFeedback(actor auth.Actor, bookingID int, req entities.FeedbackRequest) (*db.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.ErrValidation("rating must be between 1 and 5")
	}

	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsCustomer() || actor.User.ID != booking.CustomerID {
		return nil, apperrors.ErrForbidden("only the booking owner can leave feedback")
	}
	if booking.Status != db.StatusCompleted {
		return nil, apperrors.ErrConflict("feedback is only allowed for completed bookings")
	}

	feedback := &db.Feedback{
		BookingID:       booking.ID,
		CustomerID:      booking.CustomerID,
		ServiceCenterID: booking.ServiceCenterID,
		Rating:          req.Rating,
		Comment:         req.Comment,
	}
	if err := s.Bookings.CreateFeedback(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// Feedback returns the rating left on a booking, visible to anyone who can
// view the booking itself.
func (s *BookingService) Feedback(actor auth.Actor, bookingID int) (*db.Feedback, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, booking) {
		return nil, apperrors.ErrForbidden("you do not have permission to view this booking")
	}
	return s.Bookings.GetFeedbackByBookingID(bookingID)
}

// buildLazyInvoice prepares the invoice candidate for an accept/complete
// transition: cost basis at the default tax rate, no discount.
func (s *BookingService) buildLazyInvoice(booking *db.Booking, actualCost *decimal.Decimal) *db.Invoice {
	subtotal := booking.CostBasis()
	if actualCost != nil && actualCost.IsPositive() {
		subtotal = *actualCost
	}
	subtotal = subtotal.Round(2)

	rate := DefaultTaxRate()
	taxAmount, total := ComputeInvoiceTotals(subtotal, decimal.Zero, rate)
	return &db.Invoice{
		BookingID:       booking.ID,
		InvoiceNumber:   NewInvoiceNumber(booking.ID),
		CustomerID:      booking.CustomerID,
		ServiceCenterID: booking.ServiceCenterID,
		Subtotal:        subtotal,
		TaxRate:         rate,
		TaxAmount:       taxAmount,
		Discount:        decimal.Zero,
		Total:           total,
		PaymentStatus:   db.PaymentPending,
	}
}
