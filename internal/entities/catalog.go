package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type ServiceRequest struct {
	CategoryID    int    `json:"category_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	BasePrice     string `json:"base_price"` // decimal string
	DurationHours string `json:"duration_hours"`
	IsActive      *bool  `json:"is_active"`
}

type CenterProfileRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"license_number"`
}

type MechanicRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Specialization  string `json:"specialization"`
	ExperienceYears int    `json:"experience_years"`
	IsAvailable     *bool  `json:"is_available"`
}

type VehicleRequest struct {
	VehicleType        string `json:"vehicle_type"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	Year               int    `json:"year"`
	RegistrationNumber string `json:"registration_number"`
	Color              string `json:"color"`
	Mileage            int    `json:"mileage"`
}

type CenterResponse struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	IsActive     bool            `json:"is_active"`
	Rating       decimal.Decimal `json:"rating"`
	TotalReviews int             `json:"total_reviews"`
}

type ServiceResponse struct {
	ID            int             `json:"id"`
	CategoryID    int             `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	BasePrice     decimal.Decimal `json:"base_price"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	IsActive      bool            `json:"is_active"`
}

type NotificationResponse struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
