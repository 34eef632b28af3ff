package service

import (
	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

type vehicleStore interface {
	Create(v *db.Vehicle) error
	GetByID(id int) (*db.Vehicle, error)
	ListByOwner(ownerID int) ([]db.Vehicle, error)
	Update(v *db.Vehicle) error
	Delete(id, ownerID int) error
}

type VehicleService struct {
	Vehicles vehicleStore
}

func NewVehicleService(vehicles vehicleStore) *VehicleService {
	return &VehicleService{Vehicles: vehicles}
}

func validateVehicle(req entities.VehicleRequest) error {
	switch {
	case req.Brand == "":
		return apperrors.ErrValidation("brand is required")
	case req.Model == "":
		return apperrors.ErrValidation("model is required")
	case req.RegistrationNumber == "":
		return apperrors.ErrValidation("registration number is required")
	case req.Year < 1900 || req.Year > 2100:
		return apperrors.ErrValidation("year is out of range")
	case req.Mileage < 0:
		return apperrors.ErrValidation("mileage cannot be negative")
	}
	return nil
}

func (s *VehicleService) Create(actor auth.Actor, req entities.VehicleRequest) (*db.Vehicle, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.ErrForbidden("only customers can register vehicles")
	}
	if err := validateVehicle(req); err != nil {
		return nil, err
	}
	vehicle := &db.Vehicle{
		OwnerID:            actor.User.ID,
		VehicleType:        req.VehicleType,
		Brand:              req.Brand,
		Model:              req.Model,
		Year:               req.Year,
		RegistrationNumber: req.RegistrationNumber,
		Color:              req.Color,
		Mileage:            req.Mileage,
	}
	if err := s.Vehicles.Create(vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) List(actor auth.Actor) ([]db.Vehicle, error) {
	return s.Vehicles.ListByOwner(actor.User.ID)
}

func (s *VehicleService) Get(actor auth.Actor, id int) (*db.Vehicle, error) {
	vehicle, err := s.Vehicles.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != actor.User.ID && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden("vehicle does not belong to you")
	}
	return vehicle, nil
}

func (s *VehicleService) Update(actor auth.Actor, id int, req entities.VehicleRequest) (*db.Vehicle, error) {
	if err := validateVehicle(req); err != nil {
		return nil, err
	}
	vehicle := &db.Vehicle{
		ID:                 id,
		OwnerID:            actor.User.ID,
		VehicleType:        req.VehicleType,
		Brand:              req.Brand,
		Model:              req.Model,
		Year:               req.Year,
		RegistrationNumber: req.RegistrationNumber,
		Color:              req.Color,
		Mileage:            req.Mileage,
	}
	if err := s.Vehicles.Update(vehicle); err != nil {
		return nil, err
	}
	return s.Vehicles.GetByID(id)
}

func (s *VehicleService) Delete(actor auth.Actor, id int) error {
	return s.Vehicles.Delete(id, actor.User.ID)
}
