package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

// CenterRepository covers service center profiles and their mechanics.
type CenterRepository struct {
	DB *sql.DB
}

func NewCenterRepository(database *sql.DB) *CenterRepository {
	return &CenterRepository{DB: database}
}

func (r *CenterRepository) CreateCenter(sc *db.ServiceCenter) error {
	query := `
		INSERT INTO service_centers
		(user_id, name, description, address, city, state, zip_code, phone, email, license_number, is_active, rating, total_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, 0, 0, NOW(), NOW())
		RETURNING id, is_active, rating, total_reviews, created_at, updated_at`
	err := r.DB.QueryRow(query,
		sc.UserID, sc.Name, sc.Description, sc.Address, sc.City, sc.State,
		sc.ZipCode, sc.Phone, sc.Email, sc.LicenseNumber,
	).Scan(&sc.ID, &sc.IsActive, &sc.Rating, &sc.TotalReviews, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict("a profile or license number already exists")
		}
		return fmt.Errorf("error creating service center: %w", err)
	}
	return nil
}

func (r *CenterRepository) UpdateCenter(sc *db.ServiceCenter) error {
	result, err := r.DB.Exec(`
		UPDATE service_centers
		SET name = $1, description = $2, address = $3, city = $4, state = $5,
		    zip_code = $6, phone = $7, email = $8, updated_at = NOW()
		WHERE id = $9 AND user_id = $10`,
		sc.Name, sc.Description, sc.Address, sc.City, sc.State,
		sc.ZipCode, sc.Phone, sc.Email, sc.ID, sc.UserID,
	)
	if err != nil {
		return fmt.Errorf("error updating service center: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("service center not found")
	}
	return nil
}

func (r *CenterRepository) GetCenterByID(id int) (*db.ServiceCenter, error) {
	var sc db.ServiceCenter
	query := `
		SELECT id, user_id, name, description, address, city, state, zip_code, phone, email,
		       license_number, is_active, rating, total_reviews, created_at, updated_at
		FROM service_centers WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&sc.ID, &sc.UserID, &sc.Name, &sc.Description, &sc.Address, &sc.City, &sc.State,
		&sc.ZipCode, &sc.Phone, &sc.Email, &sc.LicenseNumber, &sc.IsActive,
		&sc.Rating, &sc.TotalReviews, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("service center not found")
		}
		return nil, fmt.Errorf("error querying service center: %w", err)
	}
	return &sc, nil
}

func (r *CenterRepository) ListCenters(activeOnly bool) ([]db.ServiceCenter, error) {
	query := `
		SELECT id, user_id, name, description, address, city, state, zip_code, phone, email,
		       license_number, is_active, rating, total_reviews, created_at, updated_at
		FROM service_centers`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing service centers: %w", err)
	}
	defer rows.Close()

	var centers []db.ServiceCenter
	for rows.Next() {
		var sc db.ServiceCenter
		if err := rows.Scan(
			&sc.ID, &sc.UserID, &sc.Name, &sc.Description, &sc.Address, &sc.City, &sc.State,
			&sc.ZipCode, &sc.Phone, &sc.Email, &sc.LicenseNumber, &sc.IsActive,
			&sc.Rating, &sc.TotalReviews, &sc.CreatedAt, &sc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning service center: %w", err)
		}
		centers = append(centers, sc)
	}
	return centers, rows.Err()
}

func (r *CenterRepository) SetCenterActive(id int, active bool) error {
	result, err := r.DB.Exec(
		`UPDATE service_centers SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id,
	)
	if err != nil {
		return fmt.Errorf("error updating service center status: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("service center not found")
	}
	return nil
}

func (r *CenterRepository) CreateMechanic(m *db.Mechanic) error {
	query := `
		INSERT INTO mechanics (service_center_id, user_id, name, phone, email, specialization, experience_years, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRow(query,
		m.ServiceCenterID, m.UserID, m.Name, m.Phone, m.Email,
		m.Specialization, m.ExperienceYears, m.IsAvailable,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating mechanic: %w", err)
	}
	return nil
}

func (r *CenterRepository) UpdateMechanic(m *db.Mechanic) error {
	result, err := r.DB.Exec(`
		UPDATE mechanics
		SET name = $1, phone = $2, email = $3, specialization = $4, experience_years = $5, is_available = $6
		WHERE id = $7 AND service_center_id = $8`,
		m.Name, m.Phone, m.Email, m.Specialization, m.ExperienceYears, m.IsAvailable,
		m.ID, m.ServiceCenterID,
	)
	if err != nil {
		return fmt.Errorf("error updating mechanic: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("mechanic not found")
	}
	return nil
}

func (r *CenterRepository) GetMechanicByID(id int) (*db.Mechanic, error) {
	var m db.Mechanic
	query := `
		SELECT id, service_center_id, user_id, name, phone, email, specialization, experience_years, is_available, created_at
		FROM mechanics WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&m.ID, &m.ServiceCenterID, &m.UserID, &m.Name, &m.Phone, &m.Email,
		&m.Specialization, &m.ExperienceYears, &m.IsAvailable, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("mechanic not found")
		}
		return nil, fmt.Errorf("error querying mechanic: %w", err)
	}
	return &m, nil
}

func (r *CenterRepository) ListMechanics(centerID int) ([]db.Mechanic, error) {
	query := `
		SELECT id, service_center_id, user_id, name, phone, email, specialization, experience_years, is_available, created_at
		FROM mechanics WHERE service_center_id = $1 ORDER BY name`
	rows, err := r.DB.Query(query, centerID)
	if err != nil {
		return nil, fmt.Errorf("error listing mechanics: %w", err)
	}
	defer rows.Close()

	var mechanics []db.Mechanic
	for rows.Next() {
		var m db.Mechanic
		if err := rows.Scan(
			&m.ID, &m.ServiceCenterID, &m.UserID, &m.Name, &m.Phone, &m.Email,
			&m.Specialization, &m.ExperienceYears, &m.IsAvailable, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning mechanic: %w", err)
		}
		mechanics = append(mechanics, m)
	}
	return mechanics, rows.Err()
}
