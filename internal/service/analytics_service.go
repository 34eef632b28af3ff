package service

import (
	"motorserve/internal/auth"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
	"motorserve/internal/repository"
)

const (
	popularServicesLimit   = 5
	frequentCustomersLimit = 5
	recentBookingsLimit    = 5
)

type analyticsStore interface {
	DashboardCounts(centerID int) (*repository.DashboardCounts, error)
	DailyBookings(centerID int) ([]entities.DailyBookingCount, error)
	MonthlyRevenue(centerID int) ([]entities.MonthlyRevenue, error)
	PopularServices(centerID, limit int) ([]entities.PopularService, error)
	FrequentCustomers(centerID, limit int) ([]entities.FrequentCustomer, error)
}

type bookingLister interface {
	ListByCenter(centerID int, status string) ([]entities.BookingResponse, error)
}

type AnalyticsService struct {
	Analytics analyticsStore
	Bookings  bookingLister
}

func NewAnalyticsService(analytics analyticsStore, bookings bookingLister) *AnalyticsService {
	return &AnalyticsService{Analytics: analytics, Bookings: bookings}
}

func (s *AnalyticsService) Dashboard(actor auth.Actor) (*entities.DashboardResponse, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	counts, err := s.Analytics.DashboardCounts(actor.Center.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Bookings.ListByCenter(actor.Center.ID, "")
	if err != nil {
		return nil, err
	}
	if len(recent) > recentBookingsLimit {
		recent = recent[:recentBookingsLimit]
	}
	return &entities.DashboardResponse{
		TodayBookings:      counts.TodayBookings,
		TotalBookings:      counts.TotalBookings,
		PendingBookings:    counts.PendingBookings,
		InProgressBookings: counts.InProgressBookings,
		TotalRevenue:       counts.TotalRevenue,
		MonthlyRevenue:     counts.MonthlyRevenue,
		RecentBookings:     recent,
	}, nil
}

func (s *AnalyticsService) Analyze(actor auth.Actor) (*entities.AnalyticsResponse, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	centerID := actor.Center.ID

	daily, err := s.Analytics.DailyBookings(centerID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.Analytics.MonthlyRevenue(centerID)
	if err != nil {
		return nil, err
	}
	popular, err := s.Analytics.PopularServices(centerID, popularServicesLimit)
	if err != nil {
		return nil, err
	}
	frequent, err := s.Analytics.FrequentCustomers(centerID, frequentCustomersLimit)
	if err != nil {
		return nil, err
	}
	return &entities.AnalyticsResponse{
		DailyBookings:     daily,
		MonthlyRevenue:    monthly,
		PopularServices:   popular,
		FrequentCustomers: frequent,
	}, nil
}
