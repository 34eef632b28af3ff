package entities

import "github.com/shopspring/decimal"

type DashboardResponse struct {
	TodayBookings      int               `json:"today_bookings"`
	TotalBookings      int               `json:"total_bookings"`
	PendingBookings    int               `json:"pending_bookings"`
	InProgressBookings int               `json:"in_progress_bookings"`
	TotalRevenue       decimal.Decimal   `json:"total_revenue"`
	MonthlyRevenue     decimal.Decimal   `json:"monthly_revenue"`
	RecentBookings     []BookingResponse `json:"recent_bookings"`
}

type DailyBookingCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type MonthlyRevenue struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type PopularService struct {
	ServiceName string `json:"service_name"`
	Count       int    `json:"count"`
}

type FrequentCustomer struct {
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Count      int             `json:"count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type AnalyticsResponse struct {
	DailyBookings     []DailyBookingCount `json:"daily_bookings"`
	MonthlyRevenue    []MonthlyRevenue    `json:"monthly_revenue"`
	PopularServices   []PopularService    `json:"popular_services"`
	FrequentCustomers []FrequentCustomer  `json:"frequent_customers"`
}
