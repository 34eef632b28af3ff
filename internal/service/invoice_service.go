package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type invoiceStore interface {
	CreateWithItems(inv *db.Invoice, items []db.InvoiceItem) error
	GetByID(id int) (*db.Invoice, error)
	GetByBookingID(bookingID int) (*db.Invoice, error)
	ListItems(invoiceID int) ([]db.InvoiceItem, error)
	ListPayments(invoiceID int) ([]db.Payment, error)
	AmountPaid(invoiceID int) (decimal.Decimal, error)
	ListByCustomer(customerID int) ([]db.Invoice, error)
	ListByCenter(centerID int) ([]db.Invoice, error)
	ListAll() ([]db.Invoice, error)
	AddPayment(p *db.Payment) (db.PaymentStatus, error)
	SettleOutstanding(p *db.Payment) error
}

type bookingGetter interface {
	GetByID(id int) (*db.Booking, error)
}

type InvoiceService struct {
	Invoices invoiceStore
	Bookings bookingGetter
	Notifier Notifier
}

func NewInvoiceService(invoices invoiceStore, bookings bookingGetter, notifier Notifier) *InvoiceService {
	return &InvoiceService{Invoices: invoices, Bookings: bookings, Notifier: notifier}
}

// Generate writes an itemized invoice for a booking the acting center owns.
// At most one invoice exists per booking, so a second call conflicts even
// when the first was created lazily during a status transition.
func (s *InvoiceService) Generate(actor auth.Actor, bookingID int, req entities.GenerateInvoiceRequest) (*entities.InvoiceResponse, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actor.Center == nil || actor.Center.ID != booking.ServiceCenterID {
		return nil, apperrors.ErrForbidden("only the service center can generate this invoice")
	}
	switch booking.Status {
	case db.StatusPending, db.StatusRejected, db.StatusCancelled:
		return nil, apperrors.ErrConflict("booking is not in an invoiceable state")
	}

	items := make([]db.InvoiceItem, 0, len(req.Items))
	itemsTotal := decimal.Zero
	for _, it := range req.Items {
		if it.Description == "" {
			return nil, apperrors.ErrValidation("item description is required")
		}
		if it.Quantity <= 0 {
			return nil, apperrors.ErrValidation("item quantity must be positive")
		}
		unitPrice, err := decimal.NewFromString(it.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, apperrors.ErrValidation("item unit_price must be a non-negative decimal")
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		items = append(items, db.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   unitPrice.Round(2),
			Total:       lineTotal,
		})
		itemsTotal = itemsTotal.Add(lineTotal)
	}

	subtotal := booking.CostBasis()
	if len(items) > 0 {
		subtotal = itemsTotal
	}
	if req.Subtotal != "" {
		subtotal, err = decimal.NewFromString(req.Subtotal)
		if err != nil || subtotal.IsNegative() {
			return nil, apperrors.ErrValidation("subtotal must be a non-negative decimal")
		}
	}
	subtotal = subtotal.Round(2)

	taxRate := DefaultTaxRate()
	if req.TaxRate != "" {
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return nil, apperrors.ErrValidation("tax_rate must be a non-negative decimal")
		}
	}

	discount := decimal.Zero
	if req.Discount != "" {
		discount, err = decimal.NewFromString(req.Discount)
		if err != nil || discount.IsNegative() {
			return nil, apperrors.ErrValidation("discount must be a non-negative decimal")
		}
		if discount.GreaterThan(subtotal) {
			return nil, apperrors.ErrValidation("discount cannot exceed the subtotal")
		}
		discount = discount.Round(2)
	}

	taxAmount, total := ComputeInvoiceTotals(subtotal, discount, taxRate)
	invoice := &db.Invoice{
		BookingID:       booking.ID,
		InvoiceNumber:   NewInvoiceNumber(booking.ID),
		CustomerID:      booking.CustomerID,
		ServiceCenterID: booking.ServiceCenterID,
		Subtotal:        subtotal,
		TaxRate:         taxRate,
		TaxAmount:       taxAmount,
		Discount:        discount,
		Total:           total,
		PaymentStatus:   db.PaymentPending,
		Notes:           req.Notes,
		DueDate:         req.DueDate,
	}
	if err := s.Invoices.CreateWithItems(invoice, items); err != nil {
		return nil, err
	}

	s.Notifier.Notify(booking.CustomerID, "invoice", "Invoice Generated",
		fmt.Sprintf("Invoice %s for booking #%d has been generated. Amount due: %s.",
			invoice.InvoiceNumber, booking.ID, total.StringFixed(2)))

	return s.buildResponse(invoice)
}

func (s *InvoiceService) canView(actor auth.Actor, inv *db.Invoice) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsCustomer():
		return actor.User.ID == inv.CustomerID
	case actor.IsCenter():
		return actor.Center != nil && actor.Center.ID == inv.ServiceCenterID
	}
	return false
}

func (s *InvoiceService) Get(actor auth.Actor, id int) (*entities.InvoiceResponse, error) {
	invoice, err := s.Invoices.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, invoice) {
		return nil, apperrors.ErrForbidden("you do not have permission to view this invoice")
	}
	return s.buildResponse(invoice)
}

func (s *InvoiceService) GetByBooking(actor auth.Actor, bookingID int) (*entities.InvoiceResponse, error) {
	invoice, err := s.Invoices.GetByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, invoice) {
		return nil, apperrors.ErrForbidden("you do not have permission to view this invoice")
	}
	return s.buildResponse(invoice)
}

// List returns invoice summaries scoped to the actor's role. Summaries carry
// the same fields as Get minus the item and payment breakdowns.
func (s *InvoiceService) List(actor auth.Actor) ([]entities.InvoiceResponse, error) {
	var invoices []db.Invoice
	var err error
	switch {
	case actor.IsAdmin():
		invoices, err = s.Invoices.ListAll()
	case actor.IsCustomer():
		invoices, err = s.Invoices.ListByCustomer(actor.User.ID)
	case actor.IsCenter():
		if actor.Center == nil {
			return nil, apperrors.ErrNotFound("service center profile not found")
		}
		invoices, err = s.Invoices.ListByCenter(actor.Center.ID)
	default:
		return nil, apperrors.ErrForbidden("role cannot list invoices")
	}
	if err != nil {
		return nil, err
	}

	summaries := make([]entities.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		paid, err := s.Invoices.AmountPaid(inv.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, entities.InvoiceResponse{
			ID:              inv.ID,
			InvoiceNumber:   inv.InvoiceNumber,
			BookingID:       inv.BookingID,
			CustomerID:      inv.CustomerID,
			ServiceCenterID: inv.ServiceCenterID,
			Subtotal:        inv.Subtotal,
			TaxRate:         inv.TaxRate,
			TaxAmount:       inv.TaxAmount,
			Discount:        inv.Discount,
			Total:           inv.Total,
			PaymentStatus:   string(inv.PaymentStatus),
			AmountPaid:      paid,
			Notes:           inv.Notes,
			IssuedAt:        inv.IssuedAt,
			DueDate:         inv.DueDate,
			PaidAt:          inv.PaidAt,
		})
	}
	return summaries, nil
}

// RecordPayment registers a payment against an invoice. Centers record
// in-person payments of any positive amount; the repository recomputes the
// payment status from the new running total.
func (s *InvoiceService) RecordPayment(actor auth.Actor, invoiceID int, req entities.PaymentRequest) (*entities.InvoiceResponse, error) {
	invoice, err := s.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if actor.Center == nil || actor.Center.ID != invoice.ServiceCenterID {
		return nil, apperrors.ErrForbidden("only the service center can record payments")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.ErrValidation("amount must be a positive decimal")
	}
	method := db.PaymentMethod(req.Method)
	if !method.Valid() {
		return nil, apperrors.ErrValidation("invalid payment method")
	}

	payment := &db.Payment{
		InvoiceID:     invoice.ID,
		Amount:        amount.Round(2),
		Method:        method,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	}
	status, err := s.Invoices.AddPayment(payment)
	if err != nil {
		return nil, err
	}

	if status == db.PaymentPaid {
		s.Notifier.Notify(invoice.CustomerID, "payment", "Payment Received",
			fmt.Sprintf("Invoice %s is now fully paid. Thank you!", invoice.InvoiceNumber))
	}

	return s.Get(actor, invoiceID)
}

// PayOutstanding settles the customer's remaining balance through the
// simulated gateway: one payment for exactly the outstanding amount with a
// generated transaction reference.
func (s *InvoiceService) PayOutstanding(actor auth.Actor, invoiceID int, method string) (*entities.InvoiceResponse, error) {
	invoice, err := s.Invoices.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if !actor.IsCustomer() || actor.User.ID != invoice.CustomerID {
		return nil, apperrors.ErrForbidden("only the invoice owner can pay it")
	}

	paymentMethod := db.PaymentMethod(method)
	if method == "" {
		paymentMethod = db.MethodCard
	}
	if !paymentMethod.Valid() {
		return nil, apperrors.ErrValidation("invalid payment method")
	}

	// The repository computes the remainder under the invoice row lock so
	// two concurrent pay requests cannot both charge the full balance.
	payment := &db.Payment{
		InvoiceID:     invoice.ID,
		Method:        paymentMethod,
		TransactionID: fmt.Sprintf("SIM-%d-%d", invoice.ID, time.Now().UTC().UnixNano()),
		Notes:         "Online payment",
	}
	if err := s.Invoices.SettleOutstanding(payment); err != nil {
		return nil, err
	}

	s.Notifier.Notify(invoice.CustomerID, "payment", "Payment Successful",
		fmt.Sprintf("Your payment of %s for invoice %s was processed successfully.",
			payment.Amount.StringFixed(2), invoice.InvoiceNumber))

	resp, err := s.buildResponse(invoice)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *InvoiceService) buildResponse(inv *db.Invoice) (*entities.InvoiceResponse, error) {
	// Re-read so the response reflects the latest payment status.
	invoice, err := s.Invoices.GetByID(inv.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.Invoices.ListItems(invoice.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.Invoices.ListPayments(invoice.ID)
	if err != nil {
		return nil, err
	}

	resp := &entities.InvoiceResponse{
		ID:              invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		BookingID:       invoice.BookingID,
		CustomerID:      invoice.CustomerID,
		ServiceCenterID: invoice.ServiceCenterID,
		Subtotal:        invoice.Subtotal,
		TaxRate:         invoice.TaxRate,
		TaxAmount:       invoice.TaxAmount,
		Discount:        invoice.Discount,
		Total:           invoice.Total,
		PaymentStatus:   string(invoice.PaymentStatus),
		AmountPaid:      decimal.Zero,
		Notes:           invoice.Notes,
		IssuedAt:        invoice.IssuedAt,
		DueDate:         invoice.DueDate,
		PaidAt:          invoice.PaidAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, entities.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	for _, p := range payments {
		resp.AmountPaid = resp.AmountPaid.Add(p.Amount)
		resp.Payments = append(resp.Payments, entities.PaymentResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			Method:        string(p.Method),
			TransactionID: p.TransactionID,
			Notes:         p.Notes,
			CreatedAt:     p.CreatedAt,
		})
	}
	return resp, nil
}
