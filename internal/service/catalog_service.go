package service

import (
	"github.com/shopspring/decimal"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type catalogStore interface {
	CreateCategory(c *db.ServiceCategory) error
	UpdateCategory(c *db.ServiceCategory) error
	ListCategories(activeOnly bool) ([]db.ServiceCategory, error)
	CreateService(s *db.Service) error
	UpdateService(s *db.Service) error
	GetServiceByID(id int) (*db.Service, error)
	ListServicesByCenter(centerID int, activeOnly bool) ([]entities.ServiceResponse, error)
}

type centerStore interface {
	CreateCenter(sc *db.ServiceCenter) error
	UpdateCenter(sc *db.ServiceCenter) error
	GetCenterByID(id int) (*db.ServiceCenter, error)
	ListCenters(activeOnly bool) ([]db.ServiceCenter, error)
	SetCenterActive(id int, active bool) error
	CreateMechanic(m *db.Mechanic) error
	UpdateMechanic(m *db.Mechanic) error
	GetMechanicByID(id int) (*db.Mechanic, error)
	ListMechanics(centerID int) ([]db.Mechanic, error)
}

// CatalogService manages what customers browse: service centers, their
// service offerings and the shared category taxonomy.
type CatalogService struct {
	Catalog catalogStore
	Centers centerStore
}

func NewCatalogService(catalog catalogStore, centers centerStore) *CatalogService {
	return &CatalogService{Catalog: catalog, Centers: centers}
}

// Categories, admin managed.

func (s *CatalogService) CreateCategory(req entities.CategoryRequest) (*db.ServiceCategory, error) {
	if req.Name == "" {
		return nil, apperrors.ErrValidation("category name is required")
	}
	category := &db.ServiceCategory{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.Catalog.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(id int, req entities.CategoryRequest) (*db.ServiceCategory, error) {
	if req.Name == "" {
		return nil, apperrors.ErrValidation("category name is required")
	}
	category := &db.ServiceCategory{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.Catalog.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(activeOnly bool) ([]db.ServiceCategory, error) {
	return s.Catalog.ListCategories(activeOnly)
}

// Center profiles.

func (s *CatalogService) CreateCenterProfile(actor auth.Actor, req entities.CenterProfileRequest) (*db.ServiceCenter, error) {
	if !actor.IsCenter() {
		return nil, apperrors.ErrForbidden("only service center accounts can create a profile")
	}
	switch {
	case req.Name == "":
		return nil, apperrors.ErrValidation("center name is required")
	case req.LicenseNumber == "":
		return nil, apperrors.ErrValidation("license number is required")
	case req.Address == "" || req.City == "":
		return nil, apperrors.ErrValidation("address and city are required")
	}
	center := &db.ServiceCenter{
		UserID:        actor.User.ID,
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
		IsActive:      true,
		Rating:        decimal.Zero,
	}
	if err := s.Centers.CreateCenter(center); err != nil {
		return nil, err
	}
	return center, nil
}

func (s *CatalogService) UpdateCenterProfile(actor auth.Actor, req entities.CenterProfileRequest) (*db.ServiceCenter, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	center := actor.Center
	if req.Name != "" {
		center.Name = req.Name
	}
	if req.Description != "" {
		center.Description = req.Description
	}
	if req.Address != "" {
		center.Address = req.Address
	}
	if req.City != "" {
		center.City = req.City
	}
	if req.State != "" {
		center.State = req.State
	}
	if req.ZipCode != "" {
		center.ZipCode = req.ZipCode
	}
	if req.Phone != "" {
		center.Phone = req.Phone
	}
	if req.Email != "" {
		center.Email = req.Email
	}
	if err := s.Centers.UpdateCenter(center); err != nil {
		return nil, err
	}
	return s.Centers.GetCenterByID(center.ID)
}

func (s *CatalogService) GetCenter(id int) (*db.ServiceCenter, error) {
	return s.Centers.GetCenterByID(id)
}

func (s *CatalogService) ListCenters(activeOnly bool) ([]db.ServiceCenter, error) {
	return s.Centers.ListCenters(activeOnly)
}

func (s *CatalogService) SetCenterActive(id int, active bool) error {
	if _, err := s.Centers.GetCenterByID(id); err != nil {
		return err
	}
	return s.Centers.SetCenterActive(id, active)
}

// Services offered by a center.

func (s *CatalogService) parseServiceRequest(req entities.ServiceRequest) (decimal.Decimal, decimal.Decimal, error) {
	if req.Name == "" {
		return decimal.Zero, decimal.Zero, apperrors.ErrValidation("service name is required")
	}
	price, err := decimal.NewFromString(req.BasePrice)
	if err != nil || price.IsNegative() {
		return decimal.Zero, decimal.Zero, apperrors.ErrValidation("base_price must be a non-negative decimal")
	}
	duration := decimal.Zero
	if req.DurationHours != "" {
		duration, err = decimal.NewFromString(req.DurationHours)
		if err != nil || duration.IsNegative() {
			return decimal.Zero, decimal.Zero, apperrors.ErrValidation("duration_hours must be a non-negative decimal")
		}
	}
	return price.Round(2), duration, nil
}

func (s *CatalogService) CreateService(actor auth.Actor, req entities.ServiceRequest) (*db.Service, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	price, duration, err := s.parseServiceRequest(req)
	if err != nil {
		return nil, err
	}
	svc := &db.Service{
		ServiceCenterID: actor.Center.ID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		BasePrice:       price,
		DurationHours:   duration,
		IsActive:        true,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if err := s.Catalog.CreateService(svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) UpdateService(actor auth.Actor, id int, req entities.ServiceRequest) (*db.Service, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	existing, err := s.Catalog.GetServiceByID(id)
	if err != nil {
		return nil, err
	}
	if existing.ServiceCenterID != actor.Center.ID {
		return nil, apperrors.ErrForbidden("service belongs to another center")
	}
	price, duration, err := s.parseServiceRequest(req)
	if err != nil {
		return nil, err
	}
	existing.CategoryID = req.CategoryID
	existing.Name = req.Name
	existing.Description = req.Description
	existing.BasePrice = price
	existing.DurationHours = duration
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if err := s.Catalog.UpdateService(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *CatalogService) ListCenterServices(centerID int, activeOnly bool) ([]entities.ServiceResponse, error) {
	return s.Catalog.ListServicesByCenter(centerID, activeOnly)
}

// Mechanics.

func (s *CatalogService) CreateMechanic(actor auth.Actor, req entities.MechanicRequest) (*db.Mechanic, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	if req.Name == "" {
		return nil, apperrors.ErrValidation("mechanic name is required")
	}
	mechanic := &db.Mechanic{
		ServiceCenterID: actor.Center.ID,
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Specialization:  req.Specialization,
		ExperienceYears: req.ExperienceYears,
		IsAvailable:     true,
	}
	if req.IsAvailable != nil {
		mechanic.IsAvailable = *req.IsAvailable
	}
	if err := s.Centers.CreateMechanic(mechanic); err != nil {
		return nil, err
	}
	return mechanic, nil
}

func (s *CatalogService) UpdateMechanic(actor auth.Actor, id int, req entities.MechanicRequest) (*db.Mechanic, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	existing, err := s.Centers.GetMechanicByID(id)
	if err != nil {
		return nil, err
	}
	if existing.ServiceCenterID != actor.Center.ID {
		return nil, apperrors.ErrForbidden("mechanic belongs to another center")
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Phone != "" {
		existing.Phone = req.Phone
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.Specialization != "" {
		existing.Specialization = req.Specialization
	}
	if req.ExperienceYears > 0 {
		existing.ExperienceYears = req.ExperienceYears
	}
	if req.IsAvailable != nil {
		existing.IsAvailable = *req.IsAvailable
	}
	if err := s.Centers.UpdateMechanic(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *CatalogService) ListMechanics(actor auth.Actor) ([]db.Mechanic, error) {
	if actor.Center == nil {
		return nil, apperrors.ErrNotFound("service center profile not found")
	}
	return s.Centers.ListMechanics(actor.Center.ID)
}
