package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
	"motorserve/internal/repository"
)

// fakeBookingStore mirrors the repository's transactional semantics in
// memory: transitions are compare-and-swap on the expected status, invoices
// are inserted at most once per booking.
type fakeBookingStore struct {
	nextID   int
	bookings map[int]*db.Booking
	invoices map[int]*db.Invoice
	feedback map[int]*db.Feedback
	history  []repository.StatusTransition

	// runs before the status check, simulating a request that commits first
	beforeTransition func()
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		nextID:   1,
		bookings: map[int]*db.Booking{},
		invoices: map[int]*db.Invoice{},
		feedback: map[int]*db.Feedback{},
	}
}

func (f *fakeBookingStore) Create(b *db.Booking) error {
	b.ID = f.nextID
	f.nextID++
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeBookingStore) GetByID(id int) (*db.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Booking not found")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingStore) GetDetail(id int) (*entities.BookingResponse, error) {
	b, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &entities.BookingResponse{
		ID:            b.ID,
		Status:        string(b.Status),
		CustomerID:    b.CustomerID,
		EstimatedCost: b.EstimatedCost,
		ActualCost:    b.ActualCost,
	}, nil
}

func (f *fakeBookingStore) ListByCustomer(customerID int, status string) ([]entities.BookingResponse, error) {
	var out []entities.BookingResponse
	for id, b := range f.bookings {
		if b.CustomerID != customerID {
			continue
		}
		if status != "" && string(b.Status) != status {
			continue
		}
		detail, _ := f.GetDetail(id)
		out = append(out, *detail)
	}
	return out, nil
}

func (f *fakeBookingStore) ListByCenter(centerID int, status string) ([]entities.BookingResponse, error) {
	return nil, nil
}

func (f *fakeBookingStore) ListByMechanic(mechanicID int, status string) ([]entities.BookingResponse, error) {
	return nil, nil
}

func (f *fakeBookingStore) TransitionStatus(t repository.StatusTransition) error {
	if f.beforeTransition != nil {
		f.beforeTransition()
	}
	b, ok := f.bookings[t.BookingID]
	if !ok {
		return apperrors.ErrNotFound("Booking not found")
	}
	if b.Status != t.From {
		return apperrors.ErrConflict("booking status changed concurrently")
	}
	b.Status = t.To
	if t.Notes != "" {
		b.Notes = t.Notes
	}
	if t.ActualCost != nil {
		b.ActualCost = t.ActualCost
	}
	if t.StartedAt != nil {
		b.ServiceStartedAt = t.StartedAt
	}
	if t.CompletedAt != nil {
		b.ServiceCompletedAt = t.CompletedAt
	}
	if t.AssignMechanicID != nil {
		b.MechanicID = t.AssignMechanicID
	}
	if t.Invoice != nil {
		if _, exists := f.invoices[t.BookingID]; !exists {
			copied := *t.Invoice
			copied.ID = len(f.invoices) + 1
			f.invoices[t.BookingID] = &copied
		}
	}
	if t.CancelPaidInvoice {
		if inv, exists := f.invoices[t.BookingID]; exists && inv.PaymentStatus == db.PaymentPaid {
			inv.PaymentStatus = db.PaymentCancelled
		}
	}
	f.history = append(f.history, t)
	return nil
}

func (f *fakeBookingStore) AssignMechanic(bookingID, mechanicID int) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return apperrors.ErrNotFound("Booking not found")
	}
	b.MechanicID = &mechanicID
	return nil
}

func (f *fakeBookingStore) ListStatusUpdates(bookingID int) ([]entities.StatusUpdateResponse, error) {
	var out []entities.StatusUpdateResponse
	for _, t := range f.history {
		if t.BookingID == bookingID {
			out = append(out, entities.StatusUpdateResponse{Status: string(t.To), Notes: t.Notes})
		}
	}
	return out, nil
}

func (f *fakeBookingStore) CreateFeedback(fb *db.Feedback) error {
	if _, exists := f.feedback[fb.BookingID]; exists {
		return apperrors.ErrConflict("feedback already submitted for this booking")
	}
	fb.ID = len(f.feedback) + 1
	f.feedback[fb.BookingID] = fb
	return nil
}

func (f *fakeBookingStore) GetFeedbackByBookingID(bookingID int) (*db.Feedback, error) {
	fb, ok := f.feedback[bookingID]
	if !ok {
		return nil, apperrors.ErrNotFound("Feedback not found")
	}
	return fb, nil
}

type fakeCatalog struct {
	vehicles  map[int]*db.Vehicle
	services  map[int]*db.Service
	centers   map[int]*db.ServiceCenter
	mechanics map[int]*db.Mechanic
}

func (f *fakeCatalog) GetByID(id int) (*db.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Vehicle not found")
	}
	return v, nil
}

func (f *fakeCatalog) GetServiceByID(id int) (*db.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Service not found")
	}
	return s, nil
}

func (f *fakeCatalog) GetCenterByID(id int) (*db.ServiceCenter, error) {
	c, ok := f.centers[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Service center not found")
	}
	return c, nil
}

func (f *fakeCatalog) GetMechanicByID(id int) (*db.Mechanic, error) {
	m, ok := f.mechanics[id]
	if !ok {
		return nil, apperrors.ErrNotFound("Mechanic not found")
	}
	return m, nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(userID int, notificationType, title, message string) {
	n.messages = append(n.messages, fmt.Sprintf("%d:%s:%s", userID, notificationType, title))
}

func (n *recordingNotifier) NotifyBooking(userID int, detail *entities.BookingResponse) {
	n.messages = append(n.messages, fmt.Sprintf("%d:status_update:%s", userID, detail.Status))
}

func newBookingFixture() (*BookingService, *fakeBookingStore, *recordingNotifier) {
	store := newFakeBookingStore()
	catalog := &fakeCatalog{
		vehicles: map[int]*db.Vehicle{
			1: {ID: 1, OwnerID: 10, Brand: "Honda", Model: "City", RegistrationNumber: "KA01AB1234"},
		},
		services: map[int]*db.Service{
			1: {ID: 1, ServiceCenterID: 20, Name: "Full Service", BasePrice: decimal.NewFromInt(1500), IsActive: true},
		},
		centers: map[int]*db.ServiceCenter{
			20: {ID: 20, UserID: 2, Name: "Speedy Motors", IsActive: true},
		},
		mechanics: map[int]*db.Mechanic{
			7: {ID: 7, ServiceCenterID: 20, Name: "Ravi"},
			8: {ID: 8, ServiceCenterID: 99, Name: "Elsewhere"},
		},
	}
	notifier := &recordingNotifier{}
	svc := NewBookingService(store, catalog, catalog, catalog, notifier)
	return svc, store, notifier
}

func createTestBooking(t *testing.T, svc *BookingService) *entities.BookingResponse {
	t.Helper()
	booking, err := svc.Create(customerActor(10), entities.BookingRequest{
		VehicleID:          1,
		ServiceCenterID:    20,
		ServiceID:          1,
		BookingDate:        time.Now().Add(24 * time.Hour),
		ProblemDescription: "Engine makes a rattling noise",
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBookingSnapshotsEstimate(t *testing.T) {
	svc, store, notifier := newBookingFixture()

	booking := createTestBooking(t, svc)
	assert.Equal(t, string(db.StatusPending), booking.Status)
	assert.True(t, decimal.NewFromInt(1500).Equal(booking.EstimatedCost))
	assert.Len(t, notifier.messages, 1)

	// raising the catalog price later must not change the stored estimate
	stored := store.bookings[booking.ID]
	assert.True(t, decimal.NewFromInt(1500).Equal(stored.EstimatedCost))
}

func TestCreateBookingRejectsForeignVehicle(t *testing.T) {
	svc, _, _ := newBookingFixture()

	_, err := svc.Create(customerActor(11), entities.BookingRequest{
		VehicleID:          1,
		ServiceCenterID:    20,
		ServiceID:          1,
		BookingDate:        time.Now().Add(24 * time.Hour),
		ProblemDescription: "Brakes squeal",
	})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.StatusCode(err))
}

func TestLifecycleCreatesInvoiceExactlyOnce(t *testing.T) {
	svc, store, _ := newBookingFixture()
	center := centerActor(2, 20)

	booking := createTestBooking(t, svc)

	_, err := svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted"})
	require.NoError(t, err)

	invoice := store.invoices[booking.ID]
	require.NotNil(t, invoice, "accepting must create the invoice")
	assert.True(t, decimal.NewFromInt(1500).Equal(invoice.Subtotal))
	assert.True(t, dec("270").Equal(invoice.TaxAmount))
	assert.True(t, dec("1770").Equal(invoice.Total))
	firstNumber := invoice.InvoiceNumber

	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "in_progress"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{
		Status:     "completed",
		ActualCost: "1800.00",
	})
	require.NoError(t, err)

	// completing carries another invoice candidate, but the first one wins
	invoice = store.invoices[booking.ID]
	assert.Equal(t, firstNumber, invoice.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1500).Equal(invoice.Subtotal))

	stored := store.bookings[booking.ID]
	require.NotNil(t, stored.ActualCost)
	assert.True(t, dec("1800").Equal(*stored.ActualCost))
	assert.NotNil(t, stored.ServiceStartedAt)
	assert.NotNil(t, stored.ServiceCompletedAt)
}

func TestUpdateStatusAssignsMechanicFromSameCenter(t *testing.T) {
	svc, store, _ := newBookingFixture()
	center := centerActor(2, 20)

	booking := createTestBooking(t, svc)

	_, err := svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted", MechanicID: 8})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted", MechanicID: 7})
	require.NoError(t, err)
	require.NotNil(t, store.bookings[booking.ID].MechanicID)
	assert.Equal(t, 7, *store.bookings[booking.ID].MechanicID)
}

func TestLostTransitionLeavesMechanicUnassigned(t *testing.T) {
	svc, store, _ := newBookingFixture()
	center := centerActor(2, 20)
	booking := createTestBooking(t, svc)

	// a cancellation commits between our read and our write
	store.beforeTransition = func() {
		store.bookings[booking.ID].Status = db.StatusCancelled
	}

	_, err := svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted", MechanicID: 7})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
	assert.Nil(t, store.bookings[booking.ID].MechanicID, "losing transition must not assign the mechanic")
}

func TestConcurrentTransitionConflicts(t *testing.T) {
	svc, store, _ := newBookingFixture()
	booking := createTestBooking(t, svc)

	// another request wins the race after our read
	store.bookings[booking.ID].Status = db.StatusRejected

	_, err := svc.Cancel(customerActor(10), booking.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestCancelMarksPaidInvoiceCancelled(t *testing.T) {
	svc, store, _ := newBookingFixture()
	center := centerActor(2, 20)

	booking := createTestBooking(t, svc)
	_, err := svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted"})
	require.NoError(t, err)
	store.invoices[booking.ID].PaymentStatus = db.PaymentPaid

	_, err = svc.Cancel(customerActor(10), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, db.StatusCancelled, store.bookings[booking.ID].Status)
	assert.Equal(t, db.PaymentCancelled, store.invoices[booking.ID].PaymentStatus)
}

func TestFeedbackRules(t *testing.T) {
	svc, _, _ := newBookingFixture()
	center := centerActor(2, 20)

	booking := createTestBooking(t, svc)

	_, err := svc.CreateFeedback(customerActor(10), booking.ID, entities.FeedbackRequest{Rating: 5})
	require.Error(t, err, "feedback before completion is rejected")
	assert.Equal(t, 409, apperrors.StatusCode(err))

	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "accepted"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "in_progress"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: "completed"})
	require.NoError(t, err)

	_, err = svc.CreateFeedback(customerActor(11), booking.ID, entities.FeedbackRequest{Rating: 4})
	require.Error(t, err, "only the owner can rate")
	assert.Equal(t, 403, apperrors.StatusCode(err))

	_, err = svc.CreateFeedback(customerActor(10), booking.ID, entities.FeedbackRequest{Rating: 6})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))

	fb, err := svc.CreateFeedback(customerActor(10), booking.ID, entities.FeedbackRequest{Rating: 4, Comment: "Quick work"})
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Rating)

	_, err = svc.CreateFeedback(customerActor(10), booking.ID, entities.FeedbackRequest{Rating: 5})
	require.Error(t, err, "one rating per booking")
	assert.Equal(t, 409, apperrors.StatusCode(err))
}

func TestFeedbackVisibility(t *testing.T) {
	svc, _, _ := newBookingFixture()
	center := centerActor(2, 20)

	booking := createTestBooking(t, svc)

	_, err := svc.Feedback(customerActor(10), booking.ID)
	require.Error(t, err, "no feedback yet")
	assert.Equal(t, 404, apperrors.StatusCode(err))

	for _, status := range []string{"accepted", "in_progress", "completed"} {
		_, err = svc.UpdateStatus(center, booking.ID, entities.StatusUpdateRequest{Status: status})
		require.NoError(t, err)
	}
	_, err = svc.CreateFeedback(customerActor(10), booking.ID, entities.FeedbackRequest{Rating: 4, Comment: "Quick work"})
	require.NoError(t, err)

	fb, err := svc.Feedback(customerActor(10), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Rating)

	fb, err = svc.Feedback(center, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quick work", fb.Comment)

	_, err = svc.Feedback(customerActor(11), booking.ID)
	require.Error(t, err, "strangers cannot read the rating")
	assert.Equal(t, 403, apperrors.StatusCode(err))
}
