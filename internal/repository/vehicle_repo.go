package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

func (r *VehicleRepository) Create(v *db.Vehicle) error {
	query := `
		INSERT INTO vehicles (owner_id, vehicle_type, brand, model, year, registration_number, color, mileage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRow(query,
		v.OwnerID, v.VehicleType, v.Brand, v.Model, v.Year, v.RegistrationNumber, v.Color, v.Mileage,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict("registration number already registered")
		}
		return fmt.Errorf("error creating vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(id int) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `
		SELECT id, owner_id, vehicle_type, brand, model, year, registration_number, color, mileage, created_at
		FROM vehicles WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&v.ID, &v.OwnerID, &v.VehicleType, &v.Brand, &v.Model, &v.Year,
		&v.RegistrationNumber, &v.Color, &v.Mileage, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("vehicle not found")
		}
		return nil, fmt.Errorf("error querying vehicle: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepository) ListByOwner(ownerID int) ([]db.Vehicle, error) {
	query := `
		SELECT id, owner_id, vehicle_type, brand, model, year, registration_number, color, mileage, created_at
		FROM vehicles WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.VehicleType, &v.Brand, &v.Model, &v.Year,
			&v.RegistrationNumber, &v.Color, &v.Mileage, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) Update(v *db.Vehicle) error {
	query := `
		UPDATE vehicles
		SET vehicle_type = $1, brand = $2, model = $3, year = $4, color = $5, mileage = $6
		WHERE id = $7 AND owner_id = $8`
	result, err := r.DB.Exec(query, v.VehicleType, v.Brand, v.Model, v.Year, v.Color, v.Mileage, v.ID, v.OwnerID)
	if err != nil {
		return fmt.Errorf("error updating vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound("vehicle not found")
	}
	return nil
}

// Delete removes a vehicle; only its owner may do so.
func (r *VehicleRepository) Delete(id, ownerID int) error {
	result, err := r.DB.Exec(`DELETE FROM vehicles WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound("vehicle not found")
	}
	return nil
}
