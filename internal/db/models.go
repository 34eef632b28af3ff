package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role tags gate feature access. The role is fixed at registration.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleServiceCenter Role = "service_center"
	RoleMechanic      Role = "mechanic"
	RoleAdmin         Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleServiceCenter, RoleMechanic, RoleAdmin:
		return true
	}
	return false
}

type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusAccepted         BookingStatus = "accepted"
	StatusRejected         BookingStatus = "rejected"
	StatusInProgress       BookingStatus = "in_progress"
	StatusCompleted        BookingStatus = "completed"
	StatusReadyForDelivery BookingStatus = "ready_for_delivery"
	StatusCancelled        BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInProgress,
		StatusCompleted, StatusReadyForDelivery, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition can leave s.
func (s BookingStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusReadyForDelivery
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// PaymentStatusFor derives an invoice's payment status from the sum of its
// payments against its total. Cancellation is a separate terminal override
// and never comes out of this function.
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentPaid
	case paid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

type TransactionType string

const (
	TxnIn         TransactionType = "in"
	TxnOut        TransactionType = "out"
	TxnAdjustment TransactionType = "adjustment"
)

func (t TransactionType) Valid() bool {
	return t == TxnIn || t == TxnOut || t == TxnAdjustment
}

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetBanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodUPI, MethodNetBanking, MethodWallet:
		return true
	}
	return false
}

type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ServiceCenter struct {
	ID            int
	UserID        int
	Name          string
	Description   string
	Address       string
	City          string
	State         string
	ZipCode       string
	Phone         string
	Email         string
	LicenseNumber string
	IsActive      bool
	Rating        decimal.Decimal
	TotalReviews  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Mechanic struct {
	ID              int
	ServiceCenterID int
	UserID          *int // optional linked login account
	Name            string
	Phone           string
	Email           string
	Specialization  string
	ExperienceYears int
	IsAvailable     bool
	CreatedAt       time.Time
}

type Vehicle struct {
	ID                 int
	OwnerID            int
	VehicleType        string
	Brand              string
	Model              string
	Year               int
	RegistrationNumber string
	Color              string
	Mileage            int
	CreatedAt          time.Time
}

type ServiceCategory struct {
	ID          int
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

type Service struct {
	ID              int
	ServiceCenterID int
	CategoryID      int
	Name            string
	Description     string
	BasePrice       decimal.Decimal
	DurationHours   decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
}

type Booking struct {
	ID                 int
	CustomerID         int
	ServiceCenterID    int
	VehicleID          int
	ServiceID          int
	MechanicID         *int
	BookingDate        time.Time
	PreferredTimeSlot  string
	Status             BookingStatus
	ProblemDescription string
	Notes              string
	EstimatedCost      decimal.Decimal
	ActualCost         *decimal.Decimal
	ServiceStartedAt   *time.Time
	ServiceCompletedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CostBasis is the amount an invoice is computed from: the actual cost once
// the center has recorded one, the catalog snapshot otherwise.
func (b *Booking) CostBasis() decimal.Decimal {
	if b.ActualCost != nil && b.ActualCost.IsPositive() {
		return *b.ActualCost
	}
	return b.EstimatedCost
}

// BookingStatusUpdate is an audit row appended on every transition.
type BookingStatusUpdate struct {
	ID        int
	BookingID int
	Status    BookingStatus
	UpdatedBy int
	Notes     string
	CreatedAt time.Time
}

type Invoice struct {
	ID              int
	BookingID       int
	InvoiceNumber   string
	CustomerID      int
	ServiceCenterID int
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	PaymentStatus   PaymentStatus
	Notes           string
	IssuedAt        time.Time
	DueDate         *time.Time
	PaidAt          *time.Time
}

type InvoiceItem struct {
	ID          int
	InvoiceID   int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type Payment struct {
	ID            int
	InvoiceID     int
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	Notes         string
	CreatedAt     time.Time
}

type Feedback struct {
	ID              int
	BookingID       int
	CustomerID      int
	ServiceCenterID int
	Rating          int
	Comment         string
	CreatedAt       time.Time
}

type SparePart struct {
	ID              int
	ServiceCenterID int
	Name            string
	PartNumber      string
	Description     string
	Category        string
	Supplier        string
	UnitPrice       decimal.Decimal
	Quantity        int
	MinStockLevel   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *SparePart) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

type InventoryTransaction struct {
	ID              int
	SparePartID     int
	TransactionType TransactionType
	Quantity        int
	UnitPrice       decimal.Decimal
	Notes           string
	CreatedBy       int
	CreatedAt       time.Time
}

type Notification struct {
	ID        int
	UserID    int
	Type      string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
