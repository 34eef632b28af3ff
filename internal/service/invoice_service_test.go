package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type fakeInvoiceStore struct {
	nextID   int
	invoices map[int]*db.Invoice
	items    map[int][]db.InvoiceItem
	payments map[int][]db.Payment
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		nextID:   1,
		invoices: map[int]*db.Invoice{},
		items:    map[int][]db.InvoiceItem{},
		payments: map[int][]db.Payment{},
	}
}

func (f *fakeInvoiceStore) CreateWithItems(inv *db.Invoice, items []db.InvoiceItem) error {
	for _, existing := range f.invoices {
		if existing.BookingID == inv.BookingID {
			return apperrors.ErrConflict("an invoice already exists for this booking")
		}
	}
	inv.ID = f.nextID
	f.nextID++
	copied := *inv
	f.invoices[inv.ID] = &copied
	f.items[inv.ID] = items
	return nil
}

func (f *fakeInvoiceStore) GetByID(id int) (*db.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Invoice not found")
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInvoiceStore) GetByBookingID(bookingID int) (*db.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.BookingID == bookingID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound("Invoice not found")
}

func (f *fakeInvoiceStore) ListItems(invoiceID int) ([]db.InvoiceItem, error) {
	return f.items[invoiceID], nil
}

func (f *fakeInvoiceStore) ListPayments(invoiceID int) ([]db.Payment, error) {
	return f.payments[invoiceID], nil
}

func (f *fakeInvoiceStore) AmountPaid(invoiceID int) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range f.payments[invoiceID] {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func (f *fakeInvoiceStore) ListByCustomer(customerID int) ([]db.Invoice, error) {
	var out []db.Invoice
	for _, inv := range f.invoices {
		if inv.CustomerID == customerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) ListByCenter(centerID int) ([]db.Invoice, error) {
	var out []db.Invoice
	for _, inv := range f.invoices {
		if inv.ServiceCenterID == centerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) ListAll() ([]db.Invoice, error) {
	var out []db.Invoice
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeInvoiceStore) AddPayment(p *db.Payment) (db.PaymentStatus, error) {
	inv, ok := f.invoices[p.InvoiceID]
	if !ok {
		return "", apperrors.ErrNotFound("Invoice not found")
	}
	if inv.PaymentStatus == db.PaymentCancelled {
		return "", apperrors.ErrConflict("invoice is cancelled")
	}
	p.ID = len(f.payments[p.InvoiceID]) + 1
	f.payments[p.InvoiceID] = append(f.payments[p.InvoiceID], *p)
	paid, _ := f.AmountPaid(p.InvoiceID)
	inv.PaymentStatus = db.PaymentStatusFor(paid, inv.Total)
	return inv.PaymentStatus, nil
}

func (f *fakeInvoiceStore) SettleOutstanding(p *db.Payment) error {
	inv, ok := f.invoices[p.InvoiceID]
	if !ok {
		return apperrors.ErrNotFound("Invoice not found")
	}
	if inv.PaymentStatus == db.PaymentCancelled {
		return apperrors.ErrConflict("invoice is cancelled")
	}
	paid, _ := f.AmountPaid(p.InvoiceID)
	outstanding := inv.Total.Sub(paid)
	if !outstanding.IsPositive() {
		return apperrors.ErrConflict("invoice is already paid in full")
	}
	p.Amount = outstanding
	p.ID = len(f.payments[p.InvoiceID]) + 1
	f.payments[p.InvoiceID] = append(f.payments[p.InvoiceID], *p)
	inv.PaymentStatus = db.PaymentPaid
	return nil
}

type fakeBookingGetter struct {
	bookings map[int]*db.Booking
}

func (f *fakeBookingGetter) GetByID(id int) (*db.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Booking not found")
	}
	return b, nil
}

func newInvoiceFixture() (*InvoiceService, *fakeInvoiceStore) {
	store := newFakeInvoiceStore()
	bookings := &fakeBookingGetter{bookings: map[int]*db.Booking{
		1: {
			ID:              1,
			CustomerID:      10,
			ServiceCenterID: 20,
			Status:          db.StatusCompleted,
			EstimatedCost:   decimal.NewFromInt(1500),
		},
		2: {
			ID:              2,
			CustomerID:      10,
			ServiceCenterID: 20,
			Status:          db.StatusPending,
		},
	}}
	return NewInvoiceService(store, bookings, &recordingNotifier{}), store
}

func TestGenerateItemizedInvoice(t *testing.T) {
	svc, _ := newInvoiceFixture()

	resp, err := svc.Generate(centerActor(2, 20), 1, entities.GenerateInvoiceRequest{
		Discount: "100.00",
		Items: []entities.InvoiceItemRequest{
			{Description: "Labour", Quantity: 2, UnitPrice: "500.00"},
			{Description: "Oil filter", Quantity: 1, UnitPrice: "500.00"},
		},
	})
	require.NoError(t, err)

	assert.True(t, dec("1500.00").Equal(resp.Subtotal), "subtotal comes from the items")
	assert.True(t, dec("252.00").Equal(resp.TaxAmount))
	assert.True(t, dec("1652.00").Equal(resp.Total))
	assert.Equal(t, string(db.PaymentPending), resp.PaymentStatus)
	assert.Len(t, resp.Items, 2)
}

func TestGenerateRejectsDuplicateAndWrongState(t *testing.T) {
	svc, _ := newInvoiceFixture()
	center := centerActor(2, 20)

	_, err := svc.Generate(center, 2, entities.GenerateInvoiceRequest{})
	require.Error(t, err, "pending bookings cannot be invoiced")
	assert.Equal(t, 409, apperrors.StatusCode(err))

	_, err = svc.Generate(centerActor(3, 99), 1, entities.GenerateInvoiceRequest{})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))

	_, err = svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)
	_, err = svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.Error(t, err, "one invoice per booking")
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestPaymentsDrivePaymentStatus(t *testing.T) {
	svc, _ := newInvoiceFixture()
	center := centerActor(2, 20)

	resp, err := svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)
	require.True(t, dec("1770.00").Equal(resp.Total))

	resp, err = svc.RecordPayment(center, resp.ID, entities.PaymentRequest{Amount: "770.00", Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, string(db.PaymentPartial), resp.PaymentStatus)
	assert.True(t, dec("770.00").Equal(resp.AmountPaid))

	resp, err = svc.RecordPayment(center, resp.ID, entities.PaymentRequest{Amount: "1000.00", Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, string(db.PaymentPaid), resp.PaymentStatus)

	_, err = svc.PayOutstanding(customerActor(10), resp.ID, "upi")
	require.Error(t, err, "nothing left to pay")
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestPayOutstandingSettlesExactRemainder(t *testing.T) {
	svc, store := newInvoiceFixture()
	center := centerActor(2, 20)

	generated, err := svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)

	_, err = svc.RecordPayment(center, generated.ID, entities.PaymentRequest{Amount: "500.00", Method: "cash"})
	require.NoError(t, err)

	_, err = svc.PayOutstanding(customerActor(11), generated.ID, "upi")
	require.Error(t, err, "strangers cannot pay someone else's invoice")
	assert.Equal(t, 403, apperrors.StatusCode(err))

	resp, err := svc.PayOutstanding(customerActor(10), generated.ID, "upi")
	require.NoError(t, err)
	assert.Equal(t, string(db.PaymentPaid), resp.PaymentStatus)
	assert.True(t, resp.AmountPaid.Equal(resp.Total))

	payments := store.payments[generated.ID]
	require.Len(t, payments, 2)
	assert.True(t, dec("1270.00").Equal(payments[1].Amount))
	assert.NotEmpty(t, payments[1].TransactionID)
}

func TestPayOutstandingChargesOnce(t *testing.T) {
	svc, store := newInvoiceFixture()
	center := centerActor(2, 20)

	generated, err := svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)

	customer := customerActor(10)
	_, err = svc.PayOutstanding(customer, generated.ID, "card")
	require.NoError(t, err)

	_, err = svc.PayOutstanding(customer, generated.ID, "card")
	require.Error(t, err, "a second settle finds nothing left to pay")
	assert.Equal(t, 409, apperrors.StatusCode(err))

	payments := store.payments[generated.ID]
	require.Len(t, payments, 1)
	assert.True(t, dec("1770.00").Equal(payments[0].Amount))
}

func TestListReturnsInvoiceSummaries(t *testing.T) {
	svc, _ := newInvoiceFixture()
	center := centerActor(2, 20)

	generated, err := svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)
	_, err = svc.RecordPayment(center, generated.ID, entities.PaymentRequest{Amount: "700.00", Method: "cash"})
	require.NoError(t, err)

	summaries, err := svc.List(customerActor(10))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, generated.ID, summaries[0].ID)
	assert.Equal(t, generated.InvoiceNumber, summaries[0].InvoiceNumber)
	assert.Equal(t, string(db.PaymentPartial), summaries[0].PaymentStatus)
	assert.True(t, dec("700.00").Equal(summaries[0].AmountPaid))
	assert.Empty(t, summaries[0].Items, "summaries skip the line items")

	_, err = svc.List(customerActor(99))
	require.NoError(t, err)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _ := newInvoiceFixture()
	center := centerActor(2, 20)

	generated, err := svc.Generate(center, 1, entities.GenerateInvoiceRequest{})
	require.NoError(t, err)

	_, err = svc.RecordPayment(center, generated.ID, entities.PaymentRequest{Amount: "-5", Method: "cash"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.RecordPayment(center, generated.ID, entities.PaymentRequest{Amount: "10.00", Method: "gold"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.RecordPayment(centerActor(3, 99), generated.ID, entities.PaymentRequest{Amount: "10.00", Method: "cash"})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))
}
