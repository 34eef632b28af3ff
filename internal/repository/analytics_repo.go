package repository

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"motorserve/internal/db"
	"motorserve/internal/entities"
)

// AnalyticsRepository serves the center dashboard and analytics aggregates.
type AnalyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(database *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: database}
}

type DashboardCounts struct {
	TodayBookings      int
	TotalBookings      int
	PendingBookings    int
	InProgressBookings int
	TotalRevenue       decimal.Decimal
	MonthlyRevenue     decimal.Decimal
}

func (r *AnalyticsRepository) DashboardCounts(centerID int) (*DashboardCounts, error) {
	var c DashboardCounts
	query := `
		SELECT
			COUNT(*) FILTER (WHERE booking_date::date = CURRENT_DATE),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM bookings WHERE service_center_id = $1`
	err := r.DB.QueryRow(query, centerID, db.StatusPending, db.StatusInProgress).Scan(
		&c.TodayBookings, &c.TotalBookings, &c.PendingBookings, &c.InProgressBookings,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying booking counts: %w", err)
	}

	revenueQuery := `
		SELECT
			COALESCE(SUM(total), 0),
			COALESCE(SUM(total) FILTER (WHERE date_trunc('month', issued_at) = date_trunc('month', NOW())), 0)
		FROM invoices
		WHERE service_center_id = $1 AND payment_status = $2`
	err = r.DB.QueryRow(revenueQuery, centerID, db.PaymentPaid).Scan(&c.TotalRevenue, &c.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("error querying revenue: %w", err)
	}
	return &c, nil
}

// DailyBookings returns per-day booking counts over the last 30 days.
func (r *AnalyticsRepository) DailyBookings(centerID int) ([]entities.DailyBookingCount, error) {
	query := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM bookings
		WHERE service_center_id = $1 AND created_at >= NOW() - INTERVAL '30 days'
		GROUP BY day ORDER BY day`
	rows, err := r.DB.Query(query, centerID)
	if err != nil {
		return nil, fmt.Errorf("error querying daily bookings: %w", err)
	}
	defer rows.Close()

	var counts []entities.DailyBookingCount
	for rows.Next() {
		var c entities.DailyBookingCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning daily booking count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// MonthlyRevenue returns paid invoice totals per month over the last year.
func (r *AnalyticsRepository) MonthlyRevenue(centerID int) ([]entities.MonthlyRevenue, error) {
	query := `
		SELECT to_char(date_trunc('month', issued_at), 'YYYY-MM') AS month, SUM(total)
		FROM invoices
		WHERE service_center_id = $1 AND payment_status = $2
		  AND issued_at >= NOW() - INTERVAL '12 months'
		GROUP BY month ORDER BY month`
	rows, err := r.DB.Query(query, centerID, db.PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly revenue: %w", err)
	}
	defer rows.Close()

	var revenue []entities.MonthlyRevenue
	for rows.Next() {
		var m entities.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, fmt.Errorf("error scanning monthly revenue: %w", err)
		}
		revenue = append(revenue, m)
	}
	return revenue, rows.Err()
}

func (r *AnalyticsRepository) PopularServices(centerID, limit int) ([]entities.PopularService, error) {
	query := `
		SELECT s.name, COUNT(b.id)
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.service_center_id = $1
		GROUP BY s.name ORDER BY COUNT(b.id) DESC LIMIT $2`
	rows, err := r.DB.Query(query, centerID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying popular services: %w", err)
	}
	defer rows.Close()

	var services []entities.PopularService
	for rows.Next() {
		var s entities.PopularService
		if err := rows.Scan(&s.ServiceName, &s.Count); err != nil {
			return nil, fmt.Errorf("error scanning popular service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *AnalyticsRepository) FrequentCustomers(centerID, limit int) ([]entities.FrequentCustomer, error) {
	query := `
		SELECT u.username, u.email, COUNT(b.id),
		       COALESCE(SUM(i.total) FILTER (WHERE i.payment_status = $3), 0)
		FROM bookings b
		JOIN users u ON u.id = b.customer_id
		LEFT JOIN invoices i ON i.booking_id = b.id
		WHERE b.service_center_id = $1
		GROUP BY u.username, u.email
		ORDER BY COUNT(b.id) DESC LIMIT $2`
	rows, err := r.DB.Query(query, centerID, limit, db.PaymentPaid)
	if err != nil {
		return nil, fmt.Errorf("error querying frequent customers: %w", err)
	}
	defer rows.Close()

	var customers []entities.FrequentCustomer
	for rows.Next() {
		var c entities.FrequentCustomer
		if err := rows.Scan(&c.Username, &c.Email, &c.Count, &c.TotalSpent); err != nil {
			return nil, fmt.Errorf("error scanning frequent customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
