package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"motorserve/internal/db"
	"motorserve/internal/entities"
	apperrors "motorserve/internal/errors"
)

// CatalogRepository covers global service categories and per-center services.
type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(database *sql.DB) *CatalogRepository {
	return &CatalogRepository{DB: database}
}

func (r *CatalogRepository) CreateCategory(c *db.ServiceCategory) error {
	query := `
		INSERT INTO service_categories (name, description, is_active, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRow(query, c.Name, c.Description, c.IsActive).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict("category name already exists")
		}
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateCategory(c *db.ServiceCategory) error {
	result, err := r.DB.Exec(
		`UPDATE service_categories SET name = $1, description = $2, is_active = $3 WHERE id = $4`,
		c.Name, c.Description, c.IsActive, c.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating category: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("category not found")
	}
	return nil
}

func (r *CatalogRepository) ListCategories(activeOnly bool) ([]db.ServiceCategory, error) {
	query := `SELECT id, name, description, is_active, created_at FROM service_categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	var categories []db.ServiceCategory
	for rows.Next() {
		var c db.ServiceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CatalogRepository) CreateService(s *db.Service) error {
	query := `
		INSERT INTO services (service_center_id, category_id, name, description, base_price, duration_hours, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRow(query,
		s.ServiceCenterID, s.CategoryID, s.Name, s.Description, s.BasePrice, s.DurationHours, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateService(s *db.Service) error {
	result, err := r.DB.Exec(`
		UPDATE services
		SET category_id = $1, name = $2, description = $3, base_price = $4, duration_hours = $5, is_active = $6
		WHERE id = $7 AND service_center_id = $8`,
		s.CategoryID, s.Name, s.Description, s.BasePrice, s.DurationHours, s.IsActive, s.ID, s.ServiceCenterID,
	)
	if err != nil {
		return fmt.Errorf("error updating service: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound("service not found")
	}
	return nil
}

func (r *CatalogRepository) GetServiceByID(id int) (*db.Service, error) {
	var s db.Service
	query := `
		SELECT id, service_center_id, category_id, name, description, base_price, duration_hours, is_active, created_at
		FROM services WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&s.ID, &s.ServiceCenterID, &s.CategoryID, &s.Name, &s.Description,
		&s.BasePrice, &s.DurationHours, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("service not found")
		}
		return nil, fmt.Errorf("error querying service: %w", err)
	}
	return &s, nil
}

// ListServicesByCenter returns the joined catalog view for one center.
func (r *CatalogRepository) ListServicesByCenter(centerID int, activeOnly bool) ([]entities.ServiceResponse, error) {
	query := `
		SELECT s.id, s.category_id, sc.name, s.name, s.description, s.base_price, s.duration_hours, s.is_active
		FROM services s
		JOIN service_categories sc ON sc.id = s.category_id
		WHERE s.service_center_id = $1`
	if activeOnly {
		query += ` AND s.is_active = TRUE`
	}
	query += ` ORDER BY sc.name, s.name`

	rows, err := r.DB.Query(query, centerID)
	if err != nil {
		return nil, fmt.Errorf("error listing services: %w", err)
	}
	defer rows.Close()

	var services []entities.ServiceResponse
	for rows.Next() {
		var s entities.ServiceResponse
		if err := rows.Scan(
			&s.ID, &s.CategoryID, &s.CategoryName, &s.Name, &s.Description,
			&s.BasePrice, &s.DurationHours, &s.IsActive,
		); err != nil {
			return nil, fmt.Errorf("error scanning service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
