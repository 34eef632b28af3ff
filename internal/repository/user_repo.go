package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"motorserve/internal/auth"
	"motorserve/internal/db"
	apperrors "motorserve/internal/errors"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

func (r *UserRepository) CreateUser(user *db.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Phone, user.Address,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict("username or email already exists")
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*db.User, error) {
	return r.getUser(`WHERE username = $1`, username)
}

func (r *UserRepository) GetByID(id int) (*db.User, error) {
	return r.getUser(`WHERE id = $1`, id)
}

func (r *UserRepository) getUser(where string, arg interface{}) (*db.User, error) {
	var user db.User
	query := `
		SELECT id, username, email, password_hash, role, phone, address, created_at, updated_at
		FROM users ` + where
	err := r.DB.QueryRow(query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.Phone, &user.Address, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound("user not found")
		}
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

// ResolveActor loads the user plus the profile its role implies, once per
// request, so handlers never probe optional associations themselves.
func (r *UserRepository) ResolveActor(userID int) (auth.Actor, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return auth.Actor{}, err
	}

	actor := auth.Actor{User: user}
	switch user.Role {
	case db.RoleServiceCenter:
		center, err := r.getCenterByUserID(user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return auth.Actor{}, err
		}
		actor.Center = center
	case db.RoleMechanic:
		mechanic, err := r.getMechanicByUserID(user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return auth.Actor{}, err
		}
		actor.Mechanic = mechanic
	}
	return actor, nil
}

func (r *UserRepository) getCenterByUserID(userID int) (*db.ServiceCenter, error) {
	var sc db.ServiceCenter
	query := `
		SELECT id, user_id, name, description, address, city, state, zip_code, phone, email,
		       license_number, is_active, rating, total_reviews, created_at, updated_at
		FROM service_centers WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(
		&sc.ID, &sc.UserID, &sc.Name, &sc.Description, &sc.Address, &sc.City, &sc.State,
		&sc.ZipCode, &sc.Phone, &sc.Email, &sc.LicenseNumber, &sc.IsActive,
		&sc.Rating, &sc.TotalReviews, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error querying service center profile: %w", err)
	}
	return &sc, nil
}

func (r *UserRepository) getMechanicByUserID(userID int) (*db.Mechanic, error) {
	var m db.Mechanic
	query := `
		SELECT id, service_center_id, user_id, name, phone, email, specialization,
		       experience_years, is_available, created_at
		FROM mechanics WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(
		&m.ID, &m.ServiceCenterID, &m.UserID, &m.Name, &m.Phone, &m.Email,
		&m.Specialization, &m.ExperienceYears, &m.IsAvailable, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error querying mechanic profile: %w", err)
	}
	return &m, nil
}

func (r *UserRepository) ListUsers(role string) ([]db.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, phone, address, created_at, updated_at
		FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var user db.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
			&user.Phone, &user.Address, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
