package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingRequest struct {
	VehicleID          int       `json:"vehicle_id"`
	ServiceCenterID    int       `json:"service_center_id"`
	ServiceID          int       `json:"service_id"`
	BookingDate        time.Time `json:"booking_date"`
	PreferredTimeSlot  string    `json:"preferred_time_slot"`
	ProblemDescription string    `json:"problem_description"`
}

type StatusUpdateRequest struct {
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	ActualCost string `json:"actual_cost"` // decimal string, optional
	MechanicID int    `json:"mechanic_id"` // optional assignment with the update
}

type AssignMechanicRequest struct {
	MechanicID int `json:"mechanic_id"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// BookingResponse is the joined detail view of a booking.
type BookingResponse struct {
	ID                 int              `json:"id"`
	Status             string           `json:"status"`
	CustomerID         int              `json:"customer_id"`
	CustomerName       string           `json:"customer_name"`
	ServiceCenterID    int              `json:"service_center_id"`
	ServiceCenterName  string           `json:"service_center_name"`
	VehicleID          int              `json:"vehicle_id"`
	VehicleLabel       string           `json:"vehicle_label"`
	RegistrationNumber string           `json:"registration_number"`
	ServiceID          int              `json:"service_id"`
	ServiceName        string           `json:"service_name"`
	MechanicID         *int             `json:"mechanic_id,omitempty"`
	MechanicName       string           `json:"mechanic_name,omitempty"`
	BookingDate        time.Time        `json:"booking_date"`
	PreferredTimeSlot  string           `json:"preferred_time_slot,omitempty"`
	ProblemDescription string           `json:"problem_description"`
	Notes              string           `json:"notes,omitempty"`
	EstimatedCost      decimal.Decimal  `json:"estimated_cost"`
	ActualCost         *decimal.Decimal `json:"actual_cost,omitempty"`
	ServiceStartedAt   *time.Time       `json:"service_started_at,omitempty"`
	ServiceCompletedAt *time.Time       `json:"service_completed_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type StatusUpdateResponse struct {
	Status    string    `json:"status"`
	UpdatedBy string    `json:"updated_by"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
